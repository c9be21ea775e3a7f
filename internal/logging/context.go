package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		l := zerolog.Nop()
		return &l
	}
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithViewID creates a child logger with a view_id field
func WithViewID(ctx context.Context, viewID uint64) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Uint64("view_id", viewID).Logger()
	return WithContext(ctx, childLogger)
}

// Component returns a child logger tagged with component, without touching ctx.
func Component(ctx context.Context, component string) zerolog.Logger {
	return FromContext(ctx).With().Str("component", component).Logger()
}
