package config

import "context"

type ctxKey struct{}

// ContextWithConfig stores the configuration in the context.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the configuration stored in the context, or the
// built-in defaults when none was attached.
func FromContext(ctx context.Context) *Config {
	if ctx != nil {
		if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok && cfg != nil {
			return cfg
		}
	}
	return Default()
}
