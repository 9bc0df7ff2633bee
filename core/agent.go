package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AgentRole classifies an agent's function within the trading system. The set
// is closed; the dispatcher routes envelopes by role.
type AgentRole string

const (
	// RoleSignal generates alpha signals from market data.
	RoleSignal AgentRole = "signal"
	// RoleRisk sizes positions and enforces portfolio risk limits.
	RoleRisk AgentRole = "risk"
	// RoleExecution routes approved orders to the broker.
	RoleExecution AgentRole = "execution"
	// RoleCompliance runs pre-trade rule checks.
	RoleCompliance AgentRole = "compliance"
	// RoleOrchestrator identifies the host process on envelopes it
	// originates. No agent is registered under this role.
	RoleOrchestrator AgentRole = "orchestrator"

	// RoleAll is the broadcast sentinel. An envelope addressed to RoleAll is
	// delivered to every registered agent except the sender.
	RoleAll AgentRole = "all"
)

// Status is an agent's lifecycle state. Agents rest in StatusIdle, move to
// StatusAnalyzing while handling a message, and report StatusError after a
// failed message. StatusError is a reported condition, not a crash: the agent
// stays dispatchable and returns to StatusIdle on its next successful message.
type Status string

const (
	// StatusIdle is the initial and resting state.
	StatusIdle Status = "IDLE"
	// StatusAnalyzing is set while a message is being handled.
	StatusAnalyzing Status = "ANALYZING"
	// StatusError is reported after the most recent message failed.
	StatusError Status = "ERROR"
)

// Agent is the contract every decision unit implements.
//
// Implementations must guarantee at most one in-flight Process call per
// instance: concurrent callers are serialized internally, never raced.
// Initialize must be called exactly once before Process; Shutdown is
// idempotent and no messages are accepted after it.
type Agent interface {
	ID() string
	Role() AgentRole
	Initialize(ctx context.Context) error
	Process(ctx context.Context, msg Envelope) (*Envelope, error)
	Status() StatusSnapshot
	Shutdown(ctx context.Context) error
	ResetDailyMetrics()
}

// StatusSnapshot is an immutable, point-in-time view of an agent. Metrics is
// a value copy; mutating a snapshot never touches agent-internal state.
type StatusSnapshot struct {
	ID         string    `json:"id"`
	Role       AgentRole `json:"role"`
	Status     Status    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
	Metrics    Metrics   `json:"metrics"`
}

// NewAgentID derives a globally unique agent identifier from the role, the
// creation instant and a random suffix. The id is immutable for the agent's
// lifetime.
func NewAgentID(role AgentRole) string {
	return fmt.Sprintf("%s-%d-%s", role, time.Now().UnixMilli(), uuid.NewString()[:8])
}
