// Command tradeagentd runs the trading agent fleet as a long-lived daemon.
// It wires the configured inference provider into the runtime, feeds
// broadcast events to the coordinator and shuts down cleanly on SIGINT or
// SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tradeagents "github.com/ScientiaCapital/trading-backtesting-sub003"
	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/config"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model/anthropic"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model/openai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tradeagentd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:     logging.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Output:    os.Stdout,
		Component: "tradeagentd",
	})

	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	router := agent.NewRouter(cfg.DefaultBackend)
	for role, id := range cfg.Routes {
		router.Set(role, id)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := tradeagents.New(ctx, backend, &logCoordinator{logger: logger}, func(o *tradeagents.Options) {
		o.Logger = logger
		o.Router = router
		o.ModelTimeout = cfg.ModelTimeout
		o.DailyPnLTarget = cfg.DailyPnLTarget
	})
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}

	logger.Info("runtime started",
		"provider", cfg.Provider,
		"default_backend", cfg.DefaultBackend,
		"model_timeout", cfg.ModelTimeout.String(),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rt.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("runtime stopped")
	return nil
}

func newBackend(cfg *config.Config) (model.Backend, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	case "openai":
		return openai.New(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// logCoordinator is a stand-in coordinator that writes every event to the
// structured log. Deployments embedding the backtester supply a real
// coordinator handle instead.
type logCoordinator struct {
	logger logging.Logger
}

func (c *logCoordinator) Publish(_ context.Context, ev broadcast.Event) error {
	c.logger.Info("broadcast", "channel", string(ev.Channel), "type", ev.Type, "data", ev.Data)
	return nil
}

func (c *logCoordinator) Status(context.Context) (map[string]any, error) {
	return map[string]any{"coordinator": "log", "connected": true}, nil
}
