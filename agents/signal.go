package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ScientiaCapital/trading-backtesting-sub003/agent"
	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/domain"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

const signalSystemPrompt = `You are an alpha signal generator for an automated trading desk.
Given a symbol universe, respond with a single JSON object:
{"symbol": string, "direction": 1|-1|0, "confidence": number 0..1,
 "expected_return": number, "holding_period": "1D"|"4H", "summary": string}
Pick the single strongest opportunity. Respond with JSON only.`

// signalVerdict is the decoded shape of the model's reply.
type signalVerdict struct {
	Symbol         string  `json:"symbol"`
	Direction      int     `json:"direction"`
	Confidence     float64 `json:"confidence"`
	ExpectedReturn float64 `json:"expected_return"`
	HoldingPeriod  string  `json:"holding_period"`
	Summary        string  `json:"summary"`
}

// SignalAgent generates trade signals across a symbol universe by consulting
// the routed inference backend. On each analysis request it proposes the
// single strongest trade to the risk agent.
type SignalAgent struct {
	agent.ModelAgent
	bus *broadcast.Service
}

// NewSignalAgent constructs a signal agent. bus may be nil to disable
// decision broadcasting.
func NewSignalAgent(backend model.Backend, bus *broadcast.Service, optFns ...func(o *agent.ModelAgentOptions)) *SignalAgent {
	a := &SignalAgent{bus: bus}
	a.ModelAgent = agent.NewModelAgent(core.RoleSignal, backend, a, optFns...)
	return a
}

// HandleMessage implements agent.Handler.
func (a *SignalAgent) HandleMessage(ctx context.Context, msg core.Envelope) (*core.Envelope, error) {
	req, ok := msg.Payload.(core.AnalysisRequest)
	if !ok || msg.Type != core.MessageAnalysisRequest {
		return nil, fmt.Errorf("signal agent cannot handle message type %s", msg.Type)
	}
	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("analysis request has empty symbol universe")
	}

	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "1D"
	}

	prompt := fmt.Sprintf("Universe: %s\nTimeframe: %s\nIdentify the strongest trade.",
		strings.Join(req.Symbols, ", "), timeframe)

	raw, err := a.CallModel(ctx, prompt, signalSystemPrompt)
	if err != nil {
		return nil, err
	}

	verdict, err := agent.ParseResponse[signalVerdict](raw)
	if err != nil {
		return nil, err
	}
	if verdict.Confidence < 0 || verdict.Confidence > 1 {
		return nil, fmt.Errorf("signal confidence %v out of range", verdict.Confidence)
	}

	if a.bus != nil {
		a.bus.BroadcastAgentAnalysis(ctx, a.ID(), verdict.Summary)
		a.bus.BroadcastAgentDecision(ctx, a.ID(), domain.Decision{
			Action:     directionAction(verdict.Direction),
			Symbol:     verdict.Symbol,
			Confidence: verdict.Confidence,
			Reasoning:  verdict.Summary,
			DecidedAt:  msg.Timestamp,
		})
	}

	resp := core.NewEnvelope(core.RoleSignal, core.RoleRisk, core.MessageTradeSignal, core.TradeSignal{
		Symbol:         verdict.Symbol,
		Direction:      verdict.Direction,
		Confidence:     verdict.Confidence,
		ExpectedReturn: verdict.ExpectedReturn,
		HoldingPeriod:  verdict.HoldingPeriod,
	}, core.WithResponseRequired())

	return &resp, nil
}

func directionAction(direction int) string {
	switch {
	case direction > 0:
		return "buy"
	case direction < 0:
		return "sell"
	default:
		return "hold"
	}
}
