package broadcast

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/domain"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
)

// DefaultDailyPnLTarget is the fixed daily profit target reported on the
// daily-pnl channel.
const DefaultDailyPnLTarget = 1000.0

// Options configures a Service.
type Options struct {
	Logger         logging.Logger
	DailyPnLTarget float64
}

// Service is the broadcast fan-out layer. One Service per process, sharing a
// single injected Coordinator handle across all helper calls.
type Service struct {
	coord  Coordinator
	logger logging.Logger
	target float64
}

// NewService constructs a Service around an injected coordinator handle.
func NewService(coord Coordinator, optFns ...func(o *Options)) *Service {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		DailyPnLTarget: DefaultDailyPnLTarget,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Service{
		coord:  coord,
		logger: opts.Logger,
		target: opts.DailyPnLTarget,
	}
}

// Broadcast publishes best-effort. The internal publish result is discarded
// deliberately: callers of the domain helpers must never observe a broadcast
// failure, only the log records it.
func (s *Service) Broadcast(ctx context.Context, ev Event) {
	if err := s.publish(ctx, ev); err != nil {
		s.logger.Error("broadcast dropped",
			"channel", ev.Channel,
			"type", ev.Type,
			"error", err,
		)
	}
}

func (s *Service) publish(ctx context.Context, ev Event) error {
	if ev.Timestamp == "" {
		ev.Timestamp = now().UTC().Format(time.RFC3339)
	}
	if s.coord == nil {
		return &core.PublishError{Channel: string(ev.Channel), Err: fmt.Errorf("no coordinator configured")}
	}
	if err := s.coord.Publish(ctx, ev); err != nil {
		return &core.PublishError{Channel: string(ev.Channel), Err: err}
	}
	return nil
}

// GetStatus forwards a status query to the coordinator. Unlike Broadcast this
// path surfaces failures: status-checking is a diagnostic read, not a
// side-effecting write.
func (s *Service) GetStatus(ctx context.Context) (map[string]any, error) {
	if s.coord == nil {
		return nil, &core.PublishError{Err: fmt.Errorf("no coordinator configured")}
	}
	doc, err := s.coord.Status(ctx)
	if err != nil {
		return nil, &core.PublishError{Err: err}
	}
	return doc, nil
}

// BroadcastOrderUpdate publishes an order lifecycle event. eventType is the
// suffix of the dotted type: "created", "filled", "cancelled" or "updated".
func (s *Service) BroadcastOrderUpdate(ctx context.Context, eventType string, o domain.Order) {
	s.Broadcast(ctx, Event{
		Channel: ChannelOrders,
		Type:    "order." + eventType,
		Data: map[string]any{
			"id":               o.ID,
			"symbol":           o.Symbol,
			"side":             string(o.Side),
			"qty":              o.Qty.InexactFloat64(),
			"type":             o.Type,
			"status":           string(o.Status),
			"filled_qty":       o.FilledQty.InexactFloat64(),
			"filled_avg_price": o.FilledAvgPrice.InexactFloat64(),
		},
	})
}

// BroadcastPositionUpdate publishes a position lifecycle event. eventType is
// "opened", "closed" or "updated".
func (s *Service) BroadcastPositionUpdate(ctx context.Context, eventType string, p domain.Position) {
	s.Broadcast(ctx, Event{
		Channel: ChannelPositions,
		Type:    "position." + eventType,
		Data: map[string]any{
			"symbol":          p.Symbol,
			"qty":             p.Qty.InexactFloat64(),
			"side":            string(p.Side),
			"market_value":    p.MarketValue.InexactFloat64(),
			"cost_basis":      p.CostBasis.InexactFloat64(),
			"unrealized_pl":   p.UnrealizedPL.InexactFloat64(),
			"unrealized_plpc": p.UnrealizedPLPC.InexactFloat64(),
		},
	})
}

// BroadcastAgentStatus publishes an agent status transition.
func (s *Service) BroadcastAgentStatus(ctx context.Context, agent string, status core.Status, details map[string]any) {
	s.Broadcast(ctx, Event{
		Channel: ChannelAgentStatus,
		Type:    "agent.status",
		Data: map[string]any{
			"agent":     agent,
			"status":    string(status),
			"details":   details,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastAgentDecision publishes a decision made by an agent.
func (s *Service) BroadcastAgentDecision(ctx context.Context, agent string, decision domain.Decision) {
	s.Broadcast(ctx, Event{
		Channel: ChannelAgentDecisions,
		Type:    "agent.decision",
		Data: map[string]any{
			"agent":     agent,
			"decision":  decision,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastAgentAnalysis publishes analysis produced by an agent.
func (s *Service) BroadcastAgentAnalysis(ctx context.Context, agent string, analysis any) {
	s.Broadcast(ctx, Event{
		Channel: ChannelAgentAnalysis,
		Type:    "agent.analysis",
		Data: map[string]any{
			"agent":     agent,
			"analysis":  analysis,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastPerformance publishes an arbitrary aggregate performance document.
func (s *Service) BroadcastPerformance(ctx context.Context, doc map[string]any) {
	s.Broadcast(ctx, Event{
		Channel: ChannelPerformance,
		Type:    "performance.update",
		Data:    doc,
	})
}

// BroadcastDailyPnL publishes the running daily P&L against the fixed target.
func (s *Service) BroadcastDailyPnL(ctx context.Context, value decimal.Decimal) {
	v := value.InexactFloat64()
	progress := 0.0
	if s.target != 0 {
		progress = v / s.target
	}
	s.Broadcast(ctx, Event{
		Channel: ChannelDailyPnL,
		Type:    "pnl.daily",
		Data: map[string]any{
			"value":     v,
			"target":    s.target,
			"progress":  progress,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastAlert publishes an operator alert graded by severity.
func (s *Service) BroadcastAlert(ctx context.Context, severity domain.AlertSeverity, message string, details map[string]any) {
	s.Broadcast(ctx, Event{
		Channel: ChannelAlerts,
		Type:    "alert." + string(severity),
		Data: map[string]any{
			"message":   message,
			"details":   details,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastSystemStatus publishes coarse runtime health.
func (s *Service) BroadcastSystemStatus(ctx context.Context, state domain.SystemState, details map[string]any) {
	s.Broadcast(ctx, Event{
		Channel: ChannelSystemStatus,
		Type:    "system.status",
		Data: map[string]any{
			"status":    string(state),
			"details":   details,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}

// BroadcastError publishes an error report with a stack snapshot.
func (s *Service) BroadcastError(ctx context.Context, err error, errCtx map[string]any) {
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)
	s.Broadcast(ctx, Event{
		Channel: ChannelErrors,
		Type:    "error.occurred",
		Data: map[string]any{
			"message":   err.Error(),
			"stack":     string(stack[:n]),
			"context":   errCtx,
			"timestamp": now().UTC().Format(time.RFC3339),
		},
	})
}
