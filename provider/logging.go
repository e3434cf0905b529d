package provider

import (
	"context"
	"time"

	"github.com/kbukum/audiotext/logger"
)

// WithStreamLogging logs stream open failures at error level and, when the
// iterator is closed, the item count and duration at debug level.
func WithStreamLogging[I, O any](log *logger.Logger) StreamMiddleware[I, O] {
	return func(inner Stream[I, O]) Stream[I, O] {
		return &loggingStream[I, O]{inner: inner, log: log}
	}
}

type loggingStream[I, O any] struct {
	inner Stream[I, O]
	log   *logger.Logger
}

func (l *loggingStream[I, O]) Name() string                         { return l.inner.Name() }
func (l *loggingStream[I, O]) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingStream[I, O]) Execute(ctx context.Context, input I) (Iterator[O], error) {
	start := time.Now()
	it, err := l.inner.Execute(ctx, input)
	if err != nil {
		l.log.Error("provider stream open failed", logger.Fields(
			"provider", l.inner.Name(),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}
	return &loggingIterator[O]{Iterator: it, name: l.inner.Name(), log: l.log, start: start}, nil
}

type loggingIterator[O any] struct {
	Iterator[O]
	name  string
	log   *logger.Logger
	start time.Time
	items int
	err   error
	done  bool
}

func (it *loggingIterator[O]) Next(ctx context.Context) (O, bool, error) {
	v, ok, err := it.Iterator.Next(ctx)
	if ok {
		it.items++
	}
	if err != nil {
		it.err = err
	}
	return v, ok, err
}

func (it *loggingIterator[O]) Close() error {
	err := it.Iterator.Close()
	if it.done {
		return err
	}
	it.done = true
	fields := logger.Fields(
		"provider", it.name,
		"items", it.items,
		logger.FieldDuration, time.Since(it.start).Milliseconds(),
	)
	if it.err != nil {
		fields[logger.FieldError] = it.err.Error()
		it.log.Warn("provider stream ended with error", fields)
		return err
	}
	it.log.Debug("provider stream closed", fields)
	return err
}
