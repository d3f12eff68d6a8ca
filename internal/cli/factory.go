// Package cli holds the wiring shared by the implicate commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/implicate"
	"github.com/aretw0/implicate/internal/config"
	"github.com/aretw0/implicate/internal/logging"
	"github.com/aretw0/implicate/internal/rules"
	"github.com/aretw0/implicate/pkg/observability"
	"github.com/aretw0/implicate/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the settings shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
	LogFormat  string
}

// Runtime is a fully wired registry plus the collectors it reports to.
type Runtime struct {
	Registry *implicate.Registry
	Metrics  *prometheus.Registry
	Logger   *slog.Logger

	store *config.Store
}

// Close releases the connections held by the store chain.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// CreateLogger configures the application logger.
// Without debug only warnings and errors are written, always to stderr.
func CreateLogger(opts Options) (*slog.Logger, error) {
	format, err := logging.ParseFormat(opts.LogFormat)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	return logging.New(level, format), nil
}

// NewRuntime loads the configuration, builds the store chain, seeds facts
// and registers the declarative rules.
func NewRuntime(ctx context.Context, opts Options, logger *slog.Logger) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	store, err := config.BuildStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("error building store: %w", err)
	}

	rt, err := wire(ctx, opts, logger, cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return rt, nil
}

func wire(ctx context.Context, opts Options, logger *slog.Logger, cfg *config.Config, store *config.Store) (*Runtime, error) {
	metricsReg := prometheus.NewRegistry()
	metrics, err := observability.NewMetricsTracer(metricsReg)
	if err != nil {
		return nil, fmt.Errorf("error registering metrics: %w", err)
	}

	var tracer ports.Tracer = metrics
	if opts.Debug {
		tracer = observability.Multi(metrics, observability.NewLogTracer(logger))
	}

	reg := implicate.New(
		implicate.WithStore(store),
		implicate.WithTracer(tracer),
		implicate.WithLogger(logger),
	)

	if err := config.Seed(ctx, reg.Store(), cfg.Facts); err != nil {
		return nil, err
	}
	if _, err := rules.Register(reg, cfg.Rules); err != nil {
		return nil, fmt.Errorf("error registering rules: %w", err)
	}

	logger.Debug("Registry ready",
		"config", opts.ConfigPath,
		"backend", cfg.Store.Backend,
		"facts", len(cfg.Facts),
		"rules", len(cfg.Rules))

	return &Runtime{Registry: reg, Metrics: metricsReg, Logger: logger, store: store}, nil
}

// ParseValue decodes s as JSON, falling back to the raw string.
func ParseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
