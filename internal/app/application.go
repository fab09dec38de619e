package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/raysh454/ethicheck/internal/logging"
)

// Application is the global runtime state container.
// It holds config, the logger and the components shared across commands.
// Pass Application into commands that need access to the global state rather
// than using package-level variables.
type Application struct {
	Config     *Config
	Logger     logging.Logger
	Components *Components
}

// NewApplication builds the components for cfg.
func NewApplication(ctx context.Context, cfg *Config, logger logging.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger = logging.OrNop(logger)

	comps, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, Logger: logger, Components: comps}, nil
}

// NewLogger builds the logger selected by cfg.
func NewLogger(cfg LoggingConfig) (logging.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	if strings.EqualFold(cfg.Format, "json") {
		return logging.NewWriterLogger("ethicheck", os.Stderr, level), nil
	}
	z, err := logging.NewZapLogger(level)
	if err != nil {
		return nil, err
	}
	return z, nil
}

// Shutdown releases the components, bounded by a timeout.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- a.Components.Close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
