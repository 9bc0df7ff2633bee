package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
)

// Handler supplies the agent-specific hooks invoked by Base at lifecycle
// boundaries. Setup runs inside Initialize, Teardown inside Shutdown.
// HandleMessage returns a response envelope or nil; any error it returns is
// contained by Process and converted into an ERROR_RESPONSE.
type Handler interface {
	Setup(ctx context.Context) error
	HandleMessage(ctx context.Context, msg core.Envelope) (*core.Envelope, error)
	Teardown(ctx context.Context) error
}

// Options configures a Base agent.
type Options struct {
	Logger logging.Logger
}

// Base bundles the lifecycle state machine, metrics tracking and failure
// containment shared by every agent. Embed it in concrete agent
// implementations and supply a Handler. All exported methods are
// goroutine-safe; Process additionally guarantees at most one in-flight call
// per instance.
type Base struct {
	id      string
	role    core.AgentRole
	handler Handler
	logger  logging.Logger

	// procMu serializes Process end to end, including handler suspension.
	procMu sync.Mutex

	// mu guards the short-lived state below so Status() never blocks behind
	// an in-flight handler.
	mu          sync.Mutex
	status      core.Status
	lastUpdate  time.Time
	initialized bool
	stopped     bool
	tracker     *core.Tracker
}

// NewBase constructs a Base for the given role. The handler must not be nil;
// concrete agents pass themselves.
func NewBase(role core.AgentRole, handler Handler, optFns ...func(o *Options)) Base {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return Base{
		id:      core.NewAgentID(role),
		role:    role,
		handler: handler,
		logger:  opts.Logger,
		status:  core.StatusIdle,
		tracker: core.NewTracker(),
	}
}

// ID returns the agent's immutable unique identifier.
func (b *Base) ID() string { return b.id }

// Role returns the agent's role in the closed role enumeration.
func (b *Base) Role() core.AgentRole { return b.role }

// Logger returns the agent's logger for use by embedding types.
func (b *Base) Logger() logging.Logger { return b.logger }

// Initialize moves the agent to IDLE, refreshes the last-update timestamp and
// runs the handler's Setup hook. It must be called exactly once; a second
// call fails with core.ErrInvalidLifecycle.
func (b *Base) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.initialized {
		b.mu.Unlock()
		return fmt.Errorf("agent %s already initialized: %w", b.id, core.ErrInvalidLifecycle)
	}
	b.initialized = true
	b.status = core.StatusIdle
	b.lastUpdate = time.Now().UTC()
	b.mu.Unlock()

	if err := b.handler.Setup(ctx); err != nil {
		return fmt.Errorf("agent %s setup: %w", b.id, err)
	}

	b.logger.Info("agent initialized", "agent_id", b.id, "role", b.role)

	return nil
}

// Process handles one message through the state machine. Callers are
// serialized: at most one Process runs per agent at a time, concurrent calls
// queue on the internal mutex.
//
// On handler success the agent returns to IDLE and the handler's response
// (possibly nil) is returned. On handler failure the agent reports ERROR
// status, metrics record the failure, and the error is converted into an
// ERROR_RESPONSE envelope addressed back to the sender; it is never re-raised
// past this boundary. The only error returns are lifecycle violations.
func (b *Base) Process(ctx context.Context, msg core.Envelope) (*core.Envelope, error) {
	b.procMu.Lock()
	defer b.procMu.Unlock()

	b.mu.Lock()
	if !b.initialized || b.stopped {
		b.mu.Unlock()
		return nil, fmt.Errorf("agent %s cannot process (initialized=%t stopped=%t): %w",
			b.id, b.initialized, b.stopped, core.ErrInvalidLifecycle)
	}
	b.status = core.StatusAnalyzing
	b.lastUpdate = time.Now().UTC()
	b.mu.Unlock()

	start := time.Now()
	resp, err := b.handler.HandleMessage(ctx, msg)
	elapsedMS := float64(time.Since(start)) / float64(time.Millisecond)

	b.mu.Lock()
	b.tracker.Record(elapsedMS, err == nil)
	if err != nil {
		b.status = core.StatusError
	} else {
		b.status = core.StatusIdle
	}
	b.lastUpdate = time.Now().UTC()
	b.mu.Unlock()

	if err != nil {
		b.logger.Error("message handling failed",
			"agent_id", b.id,
			"message_id", msg.ID,
			"message_type", msg.Type,
			"error", err,
		)
		errResp := core.NewErrorResponse(b.role, msg.From, msg.ID, err)
		return &errResp, nil
	}

	b.logger.Debug("message handled",
		"agent_id", b.id,
		"message_id", msg.ID,
		"message_type", msg.Type,
		"elapsed_ms", elapsedMS,
	)

	return resp, nil
}

// Status returns an immutable snapshot of the agent's identity, lifecycle
// state and a value copy of its metrics.
func (b *Base) Status() core.StatusSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return core.StatusSnapshot{
		ID:         b.id,
		Role:       b.role,
		Status:     b.status,
		LastUpdate: b.lastUpdate,
		Metrics:    b.tracker.Snapshot(),
	}
}

// Shutdown moves the agent to IDLE and runs the handler's Teardown hook.
// It is idempotent: repeated calls after a successful shutdown are no-ops.
// Once shut down the agent accepts no further messages.
func (b *Base) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil
	}
	b.stopped = true
	b.status = core.StatusIdle
	b.lastUpdate = time.Now().UTC()
	b.mu.Unlock()

	if err := b.handler.Teardown(ctx); err != nil {
		return fmt.Errorf("agent %s teardown: %w", b.id, err)
	}

	b.logger.Info("agent shut down", "agent_id", b.id, "role", b.role)

	return nil
}

// ResetDailyMetrics zeroes the counters for a new trading session. Scheduling
// the daily boundary is the host's responsibility.
func (b *Base) ResetDailyMetrics() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tracker.Reset()
	b.lastUpdate = time.Now().UTC()
}
