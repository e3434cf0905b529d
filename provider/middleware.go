package provider

// StreamMiddleware wraps a Stream provider with cross-cutting behavior.
type StreamMiddleware[I, O any] func(Stream[I, O]) Stream[I, O]

// ChainStream composes middlewares. The first is outermost:
// ChainStream(a, b)(p) is a(b(p)).
func ChainStream[I, O any](middlewares ...StreamMiddleware[I, O]) StreamMiddleware[I, O] {
	return func(inner Stream[I, O]) Stream[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}
