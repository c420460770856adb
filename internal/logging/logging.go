package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the encoder and minimum level of the process logger.
type Config struct {
	Level  string
	Format string
}

// New builds a zap logger. Format "console" produces a development encoder,
// anything else the production JSON encoder.
func New(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	levelName := cfg.Level
	if strings.TrimSpace(levelName) == "" {
		levelName = "info"
	}
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

type contextKey struct{}

// ContextWithLogger returns a derived context that carries the provided logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger previously attached to the context.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(contextKey{}).(*zap.Logger)
	return logger
}

// Or returns the context logger, falling back to base and then to a no-op logger.
func Or(ctx context.Context, base *zap.Logger) *zap.Logger {
	if logger := FromContext(ctx); logger != nil {
		return logger
	}
	if base != nil {
		return base
	}
	return zap.NewNop()
}
