package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

// maxLineSize bounds a single stdout line. Recognizer output lines are short;
// anything longer is treated as a protocol error.
const maxLineSize = 1 << 20

// stderrTail is how much trailing stderr a Stream keeps for diagnostics.
const stderrTail = 8 << 10

// ErrStopped is returned by Stream.Wait after Close terminated the process.
var ErrStopped = errors.New("process: stopped")

// Stream is a running subprocess whose stdout is consumed line by line.
// ReadLine and Close may be called from different goroutines; ReadLine
// itself is not safe for concurrent use.
type Stream struct {
	cmd     *exec.Cmd
	ctx     context.Context
	cancel  context.CancelFunc
	lines   *bufio.Scanner
	stderr  *tailBuffer
	started time.Time

	closeOnce sync.Once
	waitOnce  sync.Once
	stopped   bool
	mu        sync.Mutex
	result    *Result
	waitErr   error
}

// Start launches cmd and returns once the process is running.
func Start(ctx context.Context, cmd Command) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	c, err := build(ctx, cmd)
	if err != nil {
		cancel()
		return nil, err
	}

	stdout, err := c.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("process: stdout pipe: %w", err)
	}
	tail := &tailBuffer{limit: stderrTail}
	c.Stderr = tail

	if err := c.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("process: start %s: %w", cmd.Binary, err)
	}

	sc := bufio.NewScanner(stdout)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	return &Stream{
		cmd:     c,
		ctx:     ctx,
		cancel:  cancel,
		lines:   sc,
		stderr:  tail,
		started: time.Now(),
	}, nil
}

// ReadLine blocks for the next stdout line. It returns io.EOF once stdout is
// drained; the caller then checks Wait for the exit status.
func (s *Stream) ReadLine() (string, error) {
	if s.lines.Scan() {
		return s.lines.Text(), nil
	}
	if err := s.lines.Err(); err != nil {
		return "", fmt.Errorf("process: read stdout: %w", err)
	}
	return "", io.EOF
}

// Wait blocks until the process exits and reports how it ended. It is safe to
// call more than once; later calls return the first result.
func (s *Stream) Wait() (*Result, error) {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		res := &Result{
			Stderr:   s.stderr.Bytes(),
			ExitCode: exitCode(s.cmd),
			Duration: time.Since(s.started),
		}

		s.mu.Lock()
		stopped := s.stopped
		s.mu.Unlock()

		switch {
		case err == nil:
		case stopped:
			err = ErrStopped
		default:
			err = exitError(s.ctx, res, err)
		}
		s.result, s.waitErr = res, err
		s.cancel()
	})
	return s.result, s.waitErr
}

// Close terminates the process group if it is still running and reaps it.
// A process that already exited cleanly is unaffected. Close is idempotent.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.cancel()
	})
	_, err := s.Wait()
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.buf...)
}
