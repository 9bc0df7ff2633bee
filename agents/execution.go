package agents

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/domain"
	"github.com/ScientiaCapital/trading-backtesting-sub003/logging"
)

// Broker submits orders to the market. The paper implementation fills
// immediately at the requested reference price.
type Broker interface {
	Submit(ctx context.Context, o domain.Order) (domain.Order, error)
}

// PaperBroker fills every order in full at a fixed reference price. It stands
// in for a live broker connection in tests and simulation runs.
type PaperBroker struct {
	ReferencePrice decimal.Decimal
}

// Submit implements Broker.
func (b *PaperBroker) Submit(_ context.Context, o domain.Order) (domain.Order, error) {
	o.Status = domain.OrderStatusFilled
	o.FilledQty = o.Qty
	o.FilledAvgPrice = b.ReferencePrice
	return o, nil
}

// ExecutionOptions configures an ExecutionAgent.
type ExecutionOptions struct {
	Logger logging.Logger
	Broker Broker
	// PassiveQtyThreshold switches large orders to passive limit execution.
	PassiveQtyThreshold decimal.Decimal
}

// ExecutionAgent works approved orders. Strategy selection follows order
// characteristics: high-urgency orders go aggressive (market), large orders
// go passive (limit), the rest adaptive (chunked).
type ExecutionAgent struct {
	agent.Base
	bus              *broadcast.Service
	broker           Broker
	passiveThreshold decimal.Decimal
}

// NewExecutionAgent constructs an execution agent. bus may be nil.
func NewExecutionAgent(bus *broadcast.Service, optFns ...func(o *ExecutionOptions)) *ExecutionAgent {
	opts := ExecutionOptions{
		Broker:              &PaperBroker{ReferencePrice: decimal.NewFromInt(100)},
		PassiveQtyThreshold: decimal.NewFromInt(1000),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ExecutionAgent{
		bus:              bus,
		broker:           opts.Broker,
		passiveThreshold: opts.PassiveQtyThreshold,
	}
	a.Base = agent.NewBase(core.RoleExecution, a, func(o *agent.Options) {
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})
	return a
}

// Setup implements agent.Handler.
func (a *ExecutionAgent) Setup(context.Context) error { return nil }

// Teardown implements agent.Handler.
func (a *ExecutionAgent) Teardown(context.Context) error { return nil }

// HandleMessage implements agent.Handler.
func (a *ExecutionAgent) HandleMessage(ctx context.Context, msg core.Envelope) (*core.Envelope, error) {
	req, ok := msg.Payload.(core.ExecutionRequest)
	if !ok || msg.Type != core.MessageExecutionRequest {
		return nil, fmt.Errorf("execution agent cannot handle message type %s", msg.Type)
	}
	if req.Order.Qty.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("order %s has non-positive quantity %s", req.Order.ID, req.Order.Qty)
	}

	strategy := a.selectStrategy(msg.Priority, req.Order)

	filled, err := a.broker.Submit(ctx, req.Order)
	if err != nil {
		return nil, fmt.Errorf("submit order %s: %w", req.Order.ID, err)
	}

	if a.bus != nil {
		a.bus.BroadcastOrderUpdate(ctx, string(filled.Status), filled)
	}

	resp := core.NewEnvelope(core.RoleExecution, msg.From, core.MessageExecutionReport, core.ExecutionReport{
		Order:    filled,
		Strategy: strategy,
	})
	return &resp, nil
}

// selectStrategy mirrors the desk's routing policy: critical and high
// priority orders execute aggressively, oversized orders passively, the rest
// adaptively.
func (a *ExecutionAgent) selectStrategy(p core.Priority, o domain.Order) string {
	if p >= core.PriorityHigh {
		return "aggressive"
	}
	if o.Qty.GreaterThan(a.passiveThreshold) {
		return "passive"
	}
	return "adaptive"
}
