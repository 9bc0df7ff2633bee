package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/domain"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
)

// ComplianceOptions configures a ComplianceAgent.
type ComplianceOptions struct {
	Logger logging.Logger
	// MaxOrderValue rejects single orders above this notional value.
	MaxOrderValue decimal.Decimal
	// WashSaleWindow flags a buy after a sell of the same symbol within
	// this window.
	WashSaleWindow time.Duration
}

// tradeRecord is a remembered past trade for wash-sale detection.
type tradeRecord struct {
	side domain.OrderSide
	at   time.Time
}

// ComplianceAgent vets orders before execution: notional limits and a
// simplified wash-sale window. It raises an alert on the alerts channel for
// every rejection.
type ComplianceAgent struct {
	agent.Base
	bus            *broadcast.Service
	maxOrderValue  decimal.Decimal
	washSaleWindow time.Duration

	mu     sync.Mutex
	trades map[string][]tradeRecord
}

// NewComplianceAgent constructs a compliance agent. bus may be nil.
func NewComplianceAgent(bus *broadcast.Service, optFns ...func(o *ComplianceOptions)) *ComplianceAgent {
	opts := ComplianceOptions{
		MaxOrderValue:  decimal.NewFromInt(50_000),
		WashSaleWindow: 30 * 24 * time.Hour,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ComplianceAgent{
		bus:            bus,
		maxOrderValue:  opts.MaxOrderValue,
		washSaleWindow: opts.WashSaleWindow,
		trades:         make(map[string][]tradeRecord),
	}
	a.Base = agent.NewBase(core.RoleCompliance, a, func(o *agent.Options) {
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})
	return a
}

// Setup implements agent.Handler.
func (a *ComplianceAgent) Setup(context.Context) error { return nil }

// Teardown implements agent.Handler.
func (a *ComplianceAgent) Teardown(context.Context) error { return nil }

// HandleMessage implements agent.Handler.
func (a *ComplianceAgent) HandleMessage(ctx context.Context, msg core.Envelope) (*core.Envelope, error) {
	check, ok := msg.Payload.(core.ComplianceCheck)
	if !ok || msg.Type != core.MessageComplianceCheck {
		return nil, fmt.Errorf("compliance agent cannot handle message type %s", msg.Type)
	}

	violations := a.vet(check.Order, msg.Timestamp)

	if len(violations) > 0 && a.bus != nil {
		a.bus.BroadcastAlert(ctx, domain.AlertWarning,
			fmt.Sprintf("order %s failed compliance", check.Order.ID),
			map[string]any{"violations": violations, "symbol": check.Order.Symbol},
		)
	}

	a.remember(check.Order, msg.Timestamp)

	resp := core.NewEnvelope(core.RoleCompliance, msg.From, core.MessageComplianceVerdict, core.ComplianceVerdict{
		Passed:     len(violations) == 0,
		Violations: violations,
	})
	return &resp, nil
}

func (a *ComplianceAgent) vet(o domain.Order, at time.Time) []string {
	var violations []string

	notional := o.Qty.Mul(o.FilledAvgPrice)
	if o.FilledAvgPrice.IsZero() {
		notional = o.Qty.Mul(decimal.NewFromInt(100)) // reference price when unpriced
	}
	if notional.GreaterThan(a.maxOrderValue) {
		violations = append(violations, fmt.Sprintf("order value %s exceeds limit %s", notional, a.maxOrderValue))
	}

	if o.Side == domain.SideBuy {
		a.mu.Lock()
		for _, rec := range a.trades[o.Symbol] {
			if rec.side == domain.SideSell && at.Sub(rec.at) <= a.washSaleWindow {
				violations = append(violations, "potential wash sale")
				break
			}
		}
		a.mu.Unlock()
	}

	return violations
}

func (a *ComplianceAgent) remember(o domain.Order, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trades[o.Symbol] = append(a.trades[o.Symbol], tradeRecord{side: o.Side, at: at})
}
