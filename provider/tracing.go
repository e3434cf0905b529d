package provider

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/audiotext/observability"
)

// WithStreamTracing opens a span named spanName when the stream is opened
// and ends it when the iterator is closed, tagged with the item count.
func WithStreamTracing[I, O any](spanName string) StreamMiddleware[I, O] {
	return func(inner Stream[I, O]) Stream[I, O] {
		return &tracingStream[I, O]{inner: inner, spanName: spanName}
	}
}

type tracingStream[I, O any] struct {
	inner    Stream[I, O]
	spanName string
}

func (t *tracingStream[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingStream[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingStream[I, O]) Execute(ctx context.Context, input I) (Iterator[O], error) {
	ctx, span := observability.StartSpan(ctx, t.spanName)
	observability.SetSpanAttribute(ctx, observability.AttrProvider, t.inner.Name())

	it, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
		span.End()
		return nil, err
	}
	return &tracingIterator[O]{Iterator: it, ctx: ctx, span: span}, nil
}

type tracingIterator[O any] struct {
	Iterator[O]
	ctx   context.Context
	span  trace.Span
	items int
	ended bool
}

func (it *tracingIterator[O]) Next(ctx context.Context) (O, bool, error) {
	v, ok, err := it.Iterator.Next(ctx)
	if ok {
		it.items++
	}
	if err != nil {
		observability.SetSpanError(it.ctx, err)
	}
	return v, ok, err
}

func (it *tracingIterator[O]) Close() error {
	err := it.Iterator.Close()
	if !it.ended {
		it.ended = true
		observability.SetSpanAttribute(it.ctx, observability.AttrSegments, it.items)
		it.span.End()
	}
	return err
}
