package provider

import "context"

// Stream takes one input and returns a lazily pulled sequence of outputs.
// The caller owns the returned Iterator and must Close it.
type Stream[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (Iterator[O], error)
}
