package provider

import "context"

// Iterator provides pull-based sequential access to a stream of values.
// Values are produced on demand; nothing is read ahead of the consumer.
type Iterator[T any] interface {
	// Next returns the next value. It returns (zero, false, nil) when the
	// sequence is exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases the resources behind the iterator. It is safe to call
	// more than once and before exhaustion.
	Close() error
}

// SliceIterator serves values from an in-memory slice.
type SliceIterator[T any] struct {
	items  []T
	pos    int
	closed bool
}

// FromSlice returns an Iterator over items.
func FromSlice[T any](items []T) *SliceIterator[T] {
	return &SliceIterator[T]{items: items}
}

// Next implements Iterator.
func (it *SliceIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if it.closed || it.pos >= len(it.items) {
		return zero, false, nil
	}
	v := it.items[it.pos]
	it.pos++
	return v, true, nil
}

// Close implements Iterator.
func (it *SliceIterator[T]) Close() error {
	it.closed = true
	return nil
}

// Consumed reports how many values have been handed out.
func (it *SliceIterator[T]) Consumed() int { return it.pos }
