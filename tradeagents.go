// Package tradeagents provides a high-level façade over the agent,
// dispatch and broadcast packages, enabling construction of a complete
// trading desk with a few calls. Most applications interact with this
// package by:
//  1. Creating a Runtime via New() with an inference backend and coordinator
//  2. Sending analysis requests through Analyze() or raw envelopes via Send()
//  3. Reading agent states with Statuses() and shutting down via Shutdown()
//
// The façade wires the four stock agents (signal, risk, execution,
// compliance) into a dispatcher and keeps the backtester's status channel fed
// through the broadcast service. All defaults are safe for local development;
// production deployments supply a real coordinator and structured logger.
package tradeagents

import (
	"context"
	"time"

	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/agents"
	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/dispatch"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

// Options configures the Runtime.
type Options struct {
	// Logger receives structured runtime logs. Defaults to a no-op logger.
	Logger logging.Logger
	// Router overrides the default role-to-model routing table.
	Router *agent.Router
	// ModelTimeout bounds each inference call.
	ModelTimeout time.Duration
	// DailyPnLTarget is broadcast alongside daily PnL updates.
	DailyPnLTarget float64
}

// Runtime owns the agent fleet, the dispatcher and the broadcast service.
type Runtime struct {
	dispatcher *dispatch.Dispatcher
	bus        *broadcast.Service
	logger     logging.Logger
}

// New wires the four stock agents against the given inference backend and
// coordinator, registers them with a dispatcher and initializes them.
func New(ctx context.Context, backend model.Backend, coord broadcast.Coordinator, optFns ...func(o *Options)) (*Runtime, error) {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		Router:       agent.NewRouter(agent.DefaultBackend),
		ModelTimeout: agent.DefaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	bus := broadcast.NewService(coord, func(o *broadcast.Options) {
		o.Logger = opts.Logger
		if opts.DailyPnLTarget > 0 {
			o.DailyPnLTarget = opts.DailyPnLTarget
		}
	})

	d := dispatch.New(func(o *dispatch.Options) {
		o.Logger = opts.Logger
		o.Bus = bus
	})

	signal := agents.NewSignalAgent(backend, bus, func(o *agent.ModelAgentOptions) {
		o.Logger = opts.Logger
		o.Router = opts.Router
		o.ModelTimeout = opts.ModelTimeout
	})
	risk := agents.NewRiskAgent(bus, func(o *agents.RiskOptions) {
		o.Logger = opts.Logger
	})
	execution := agents.NewExecutionAgent(bus, func(o *agents.ExecutionOptions) {
		o.Logger = opts.Logger
	})
	compliance := agents.NewComplianceAgent(bus, func(o *agents.ComplianceOptions) {
		o.Logger = opts.Logger
	})

	for _, a := range []core.Agent{signal, risk, execution, compliance} {
		if err := d.Register(a); err != nil {
			return nil, err
		}
	}

	if err := d.InitializeAll(ctx); err != nil {
		return nil, err
	}

	return &Runtime{dispatcher: d, bus: bus, logger: opts.Logger}, nil
}

// Analyze asks the signal agent to evaluate a symbol universe and returns the
// resulting envelopes (a trade signal addressed to the risk agent, or an
// error response).
func (r *Runtime) Analyze(ctx context.Context, symbols []string, timeframe string) ([]core.Envelope, error) {
	env := core.NewEnvelope(core.RoleOrchestrator, core.RoleSignal, core.MessageAnalysisRequest, core.AnalysisRequest{
		Symbols:   symbols,
		Timeframe: timeframe,
	})
	return r.dispatcher.Send(ctx, env)
}

// Send delivers a raw envelope through the dispatcher.
func (r *Runtime) Send(ctx context.Context, env core.Envelope) ([]core.Envelope, error) {
	return r.dispatcher.Send(ctx, env)
}

// SendBatch delivers envelopes in priority order.
func (r *Runtime) SendBatch(ctx context.Context, envs []core.Envelope) ([]core.Envelope, error) {
	return r.dispatcher.SendBatch(ctx, envs)
}

// Statuses snapshots every agent.
func (r *Runtime) Statuses() []core.StatusSnapshot {
	return r.dispatcher.Statuses()
}

// Bus exposes the broadcast service for host-level event publication.
func (r *Runtime) Bus() *broadcast.Service {
	return r.bus
}

// ResetDailyMetrics clears daily counters across the fleet.
func (r *Runtime) ResetDailyMetrics() {
	r.dispatcher.ResetDailyMetrics()
}

// Shutdown stops every agent. Safe to call more than once.
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.dispatcher.ShutdownAll(ctx)
}
