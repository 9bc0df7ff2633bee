package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
)

// Options holds dependency overrides passed to New().
type Options struct {
	Logger logging.Logger
	// Bus, when set, receives agent-status broadcasts on lifecycle changes.
	Bus *broadcast.Service
}

// Dispatcher delivers envelopes to agents registered by role. Public methods
// are safe for concurrent use; per-agent serialization of Process is the
// agent's own guarantee, the dispatcher adds none on top.
type Dispatcher struct {
	mu     sync.RWMutex
	agents map[core.AgentRole]core.Agent
	logger logging.Logger
	bus    *broadcast.Service
}

// New constructs an empty Dispatcher.
func New(optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Dispatcher{
		agents: make(map[core.AgentRole]core.Agent),
		logger: opts.Logger,
		bus:    opts.Bus,
	}
}

// Register adds an agent. Exactly one agent per role.
func (d *Dispatcher) Register(a core.Agent) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.agents[a.Role()]; exists {
		return fmt.Errorf("agent already registered for role %s", a.Role())
	}
	d.agents[a.Role()] = a

	d.logger.Info("agent registered", "agent_id", a.ID(), "role", a.Role())

	return nil
}

// Agent returns the agent registered for a role.
func (d *Dispatcher) Agent(role core.AgentRole) (core.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.agents[role]
	return a, ok
}

// InitializeAll initializes every registered agent, failing on the first
// error.
func (d *Dispatcher) InitializeAll(ctx context.Context) error {
	for _, a := range d.snapshot() {
		if err := a.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", a.Role(), err)
		}
		d.notifyStatus(ctx, a)
	}
	return nil
}

// ShutdownAll shuts down every registered agent, continuing past individual
// failures and returning the first error encountered.
func (d *Dispatcher) ShutdownAll(ctx context.Context) error {
	var firstErr error
	for _, a := range d.snapshot() {
		if err := a.Shutdown(ctx); err != nil {
			d.logger.Error("agent shutdown failed", "agent_id", a.ID(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.notifyStatus(ctx, a)
	}
	return firstErr
}

// Send delivers one envelope. Envelopes addressed to core.RoleAll fan out to
// every registered agent except the sender; responses (including synthesized
// error responses) are collected in registration-independent role order.
func (d *Dispatcher) Send(ctx context.Context, env core.Envelope) ([]core.Envelope, error) {
	if env.To == core.RoleAll {
		return d.fanOut(ctx, env)
	}

	d.mu.RLock()
	target, ok := d.agents[env.To]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no agent registered for role %s", env.To)
	}

	resp, err := target.Process(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("dispatch to %s: %w", env.To, err)
	}
	d.notifyStatus(ctx, target)
	if resp == nil {
		return nil, nil
	}
	return []core.Envelope{*resp}, nil
}

// SendBatch delivers a batch in priority order (critical first; stable for
// equal priorities). Responses from all deliveries are concatenated.
func (d *Dispatcher) SendBatch(ctx context.Context, envs []core.Envelope) ([]core.Envelope, error) {
	ordered := make([]core.Envelope, len(envs))
	copy(ordered, envs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	var responses []core.Envelope
	for _, env := range ordered {
		resp, err := d.Send(ctx, env)
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp...)
	}
	return responses, nil
}

func (d *Dispatcher) fanOut(ctx context.Context, env core.Envelope) ([]core.Envelope, error) {
	var responses []core.Envelope
	for _, a := range d.snapshot() {
		if a.Role() == env.From {
			continue
		}
		resp, err := a.Process(ctx, env)
		if err != nil {
			return responses, fmt.Errorf("broadcast to %s: %w", a.Role(), err)
		}
		d.notifyStatus(ctx, a)
		if resp != nil {
			responses = append(responses, *resp)
		}
	}
	return responses, nil
}

// ResetDailyMetrics resets counters on every registered agent. Invoked by
// the host's daily scheduler.
func (d *Dispatcher) ResetDailyMetrics() {
	for _, a := range d.snapshot() {
		a.ResetDailyMetrics()
	}
	d.logger.Info("daily metrics reset", "agents", len(d.snapshot()))
}

// Statuses returns a snapshot of every registered agent, ordered by role.
func (d *Dispatcher) Statuses() []core.StatusSnapshot {
	agents := d.snapshot()
	out := make([]core.StatusSnapshot, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Status())
	}
	return out
}

// snapshot returns the registered agents ordered by role for deterministic
// iteration.
func (d *Dispatcher) snapshot() []core.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	roles := make([]string, 0, len(d.agents))
	for role := range d.agents {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	out := make([]core.Agent, 0, len(roles))
	for _, role := range roles {
		out = append(out, d.agents[core.AgentRole(role)])
	}
	return out
}

func (d *Dispatcher) notifyStatus(ctx context.Context, a core.Agent) {
	if d.bus == nil {
		return
	}
	snap := a.Status()
	d.bus.BroadcastAgentStatus(ctx, snap.ID, snap.Status, map[string]any{
		"role":            string(snap.Role),
		"decisions_today": snap.Metrics.DecisionsToday,
		"success_rate":    snap.Metrics.SuccessRate,
	})
}
