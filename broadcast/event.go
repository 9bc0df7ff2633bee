package broadcast

import (
	"context"
	"time"
)

// Channel names a broadcast topic consumed by external subscribers. The set
// is closed and part of the external wire contract.
type Channel string

const (
	// ChannelOrders carries order lifecycle events.
	ChannelOrders Channel = "orders"
	// ChannelPositions carries position lifecycle events.
	ChannelPositions Channel = "positions"
	// ChannelAgentStatus carries agent status transitions.
	ChannelAgentStatus Channel = "agent-status"
	// ChannelAgentDecisions carries agent decisions.
	ChannelAgentDecisions Channel = "agent-decisions"
	// ChannelAgentAnalysis carries agent analysis narratives.
	ChannelAgentAnalysis Channel = "agent-analysis"
	// ChannelPerformance carries aggregate performance documents.
	ChannelPerformance Channel = "performance"
	// ChannelDailyPnL carries the running daily profit-and-loss figure.
	ChannelDailyPnL Channel = "daily-pnl"
	// ChannelAlerts carries operator alerts.
	ChannelAlerts Channel = "alerts"
	// ChannelSystemStatus carries coarse runtime health.
	ChannelSystemStatus Channel = "system-status"
	// ChannelErrors carries error reports.
	ChannelErrors Channel = "errors"
)

// Event is the ephemeral unit handed to the coordinator. It is constructed by
// a publishing component and discarded after the publish attempt completes.
// Timestamp is RFC3339 and defaulted to publish time when absent.
type Event struct {
	Channel   Channel        `json:"channel"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// Coordinator is the external stateful service owning subscriber
// connections. It is constructor-injected into the Service so tests can
// substitute a fake; the process owns construction-once/share-everywhere
// lifecycle, and this package never tears it down.
type Coordinator interface {
	Publish(ctx context.Context, ev Event) error
	Status(ctx context.Context) (map[string]any, error)
}

// now is stubbed in tests for deterministic timestamps.
var now = time.Now
