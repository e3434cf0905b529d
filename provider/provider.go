package provider

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Provider is the base interface all providers implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable reports whether the provider can take work right now.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider from a generic config map, typically a
// sub-tree of the service config.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// DecodeConfig decodes a factory config map into out, a pointer to a struct
// with mapstructure tags. Duration strings such as "90s" are accepted.
func DecodeConfig(cfg map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("provider: config decoder: %w", err)
	}
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("provider: decode config: %w", err)
	}
	return nil
}
