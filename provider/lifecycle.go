package provider

import "context"

// Initializable is implemented by providers that must verify their
// environment before taking work (binary present, model file readable).
type Initializable interface {
	Init(ctx context.Context) error
}

// InitIfNeeded calls Init when p implements Initializable.
func InitIfNeeded(ctx context.Context, p Provider) error {
	if in, ok := p.(Initializable); ok {
		return in.Init(ctx)
	}
	return nil
}
