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

// RiskOptions configures a RiskAgent.
type RiskOptions struct {
	Logger logging.Logger
	// PortfolioValue is the equity base for position sizing.
	PortfolioValue decimal.Decimal
	// MinConfidence rejects signals below this threshold.
	MinConfidence float64
	// MaxPositionFraction caps a single position as a fraction of equity.
	MaxPositionFraction float64
}

// RiskAgent sizes positions and enforces portfolio limits. Sizing uses a
// fractional Kelly criterion with a hard per-position cap; it is deliberately
// deterministic and never consults a model.
type RiskAgent struct {
	agent.Base
	bus                 *broadcast.Service
	portfolioValue      decimal.Decimal
	minConfidence       float64
	maxPositionFraction float64
}

// NewRiskAgent constructs a risk agent. bus may be nil.
func NewRiskAgent(bus *broadcast.Service, optFns ...func(o *RiskOptions)) *RiskAgent {
	opts := RiskOptions{
		PortfolioValue:      decimal.NewFromInt(100_000),
		MinConfidence:       0.6,
		MaxPositionFraction: 0.1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &RiskAgent{
		bus:                 bus,
		portfolioValue:      opts.PortfolioValue,
		minConfidence:       opts.MinConfidence,
		maxPositionFraction: opts.MaxPositionFraction,
	}
	a.Base = agent.NewBase(core.RoleRisk, a, func(o *agent.Options) {
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})
	return a
}

// Setup implements agent.Handler.
func (a *RiskAgent) Setup(context.Context) error { return nil }

// Teardown implements agent.Handler.
func (a *RiskAgent) Teardown(context.Context) error { return nil }

// HandleMessage implements agent.Handler.
func (a *RiskAgent) HandleMessage(ctx context.Context, msg core.Envelope) (*core.Envelope, error) {
	sig, ok := msg.Payload.(core.TradeSignal)
	if !ok || msg.Type != core.MessageTradeSignal {
		return nil, fmt.Errorf("risk agent cannot handle message type %s", msg.Type)
	}

	assessment := a.assess(sig)

	if a.bus != nil {
		action := "reject"
		if assessment.Approved {
			action = "approve"
		}
		a.bus.BroadcastAgentDecision(ctx, a.ID(), domain.Decision{
			Action:     action,
			Symbol:     sig.Symbol,
			Confidence: sig.Confidence,
			Detail: map[string]any{
				"position_size": assessment.PositionSize.String(),
				"reasons":       assessment.Reasons,
			},
			DecidedAt: msg.Timestamp,
		})
	}

	resp := core.NewEnvelope(core.RoleRisk, msg.From, core.MessageRiskAssessment, assessment)
	return &resp, nil
}

// assess applies confidence gating and fractional Kelly sizing.
func (a *RiskAgent) assess(sig core.TradeSignal) core.RiskAssessment {
	var reasons []string

	if sig.Direction == 0 {
		reasons = append(reasons, "neutral signal")
	}
	if sig.Confidence < a.minConfidence {
		reasons = append(reasons, fmt.Sprintf("confidence %.2f below threshold %.2f", sig.Confidence, a.minConfidence))
	}
	if sig.ExpectedReturn <= 0 && sig.Direction != 0 {
		reasons = append(reasons, "non-positive expected return")
	}

	if len(reasons) > 0 {
		return core.RiskAssessment{Approved: false, Symbol: sig.Symbol, Reasons: reasons}
	}

	fraction := kellyFraction(sig.ExpectedReturn, sig.Confidence)
	if fraction > a.maxPositionFraction {
		fraction = a.maxPositionFraction
	}
	size := a.portfolioValue.Mul(decimal.NewFromFloat(fraction)).Round(2)

	return core.RiskAssessment{
		Approved:     true,
		Symbol:       sig.Symbol,
		PositionSize: size,
	}
}

// kellyFraction computes a quarter-Kelly allocation assuming a 2:1
// reward/risk ratio. The per-position cap is applied by the caller.
func kellyFraction(expectedReturn, winProbability float64) float64 {
	if expectedReturn <= 0 || winProbability <= 0.5 {
		return 0
	}
	const winLossRatio = 2.0
	kelly := winProbability - (1-winProbability)/winLossRatio
	if kelly < 0 {
		return 0
	}
	return kelly * 0.25
}
