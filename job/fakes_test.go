package job

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"

	"github.com/kbukum/audiotext/provider"
	"github.com/kbukum/audiotext/transcription"
)

// scriptedRecognizer yields segments in order. hook runs after segment i is
// pulled and before it is returned.
type scriptedRecognizer struct {
	segments []transcription.Segment
	openErr  error
	failAt   int // Next fails at this index when > 0
	hook     func(i int)
	closed   atomic.Int32
	lastReq  transcription.Request
}

func (r *scriptedRecognizer) Name() string                     { return "scripted" }
func (r *scriptedRecognizer) IsAvailable(context.Context) bool { return true }

func (r *scriptedRecognizer) Execute(_ context.Context, req transcription.Request) (provider.Iterator[transcription.Segment], error) {
	r.lastReq = req
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &scriptedIterator{r: r}, nil
}

type scriptedIterator struct {
	r   *scriptedRecognizer
	pos int
}

func (it *scriptedIterator) Next(ctx context.Context) (transcription.Segment, bool, error) {
	if err := ctx.Err(); err != nil {
		return transcription.Segment{}, false, err
	}
	if it.r.failAt > 0 && it.pos == it.r.failAt {
		return transcription.Segment{}, false, errors.New("decoder crashed")
	}
	if it.pos >= len(it.r.segments) {
		return transcription.Segment{}, false, nil
	}
	seg := it.r.segments[it.pos]
	if it.r.hook != nil {
		it.r.hook(it.pos)
	}
	it.pos++
	return seg, true, nil
}

func (it *scriptedIterator) Close() error {
	it.r.closed.Add(1)
	return nil
}

// blockingRecognizer emits one segment, then waits for release or ctx.
type blockingRecognizer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingRecognizer() *blockingRecognizer {
	return &blockingRecognizer{started: make(chan struct{}), release: make(chan struct{})}
}

func (r *blockingRecognizer) Name() string                     { return "blocking" }
func (r *blockingRecognizer) IsAvailable(context.Context) bool { return true }

func (r *blockingRecognizer) Execute(context.Context, transcription.Request) (provider.Iterator[transcription.Segment], error) {
	return &blockingIterator{r: r}, nil
}

type blockingIterator struct {
	r   *blockingRecognizer
	pos int
}

func (it *blockingIterator) Next(ctx context.Context) (transcription.Segment, bool, error) {
	switch it.pos {
	case 0:
		it.pos++
		return transcription.Segment{Text: " primeiro"}, true, nil
	case 1:
		it.r.once.Do(func() { close(it.r.started) })
		select {
		case <-it.r.release:
		case <-ctx.Done():
			return transcription.Segment{}, false, ctx.Err()
		}
		it.pos++
		return transcription.Segment{Text: " segundo"}, true, nil
	default:
		return transcription.Segment{}, false, nil
	}
}

func (it *blockingIterator) Close() error { return nil }

type panicRecognizer struct{}

func (panicRecognizer) Name() string                     { return "panic" }
func (panicRecognizer) IsAvailable(context.Context) bool { return true }
func (panicRecognizer) Execute(context.Context, transcription.Request) (provider.Iterator[transcription.Segment], error) {
	panic("recognizer bug")
}

// fakeConverter copies the input to the converted path and records calls.
type fakeConverter struct {
	err    error
	calls  atomic.Int32
	inputs []string
	mu     sync.Mutex
}

func (c *fakeConverter) Convert(_ context.Context, input string) (string, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.inputs = append(c.inputs, input)
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	out := input + ".wav"
	b, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	return out, os.WriteFile(out, b, 0o644)
}

func segs(texts ...string) []transcription.Segment {
	out := make([]transcription.Segment, len(texts))
	for i, s := range texts {
		out[i] = transcription.Segment{Start: float64(i), End: float64(i + 1), Text: s}
	}
	return out
}
