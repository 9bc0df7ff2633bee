package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScientiaCapital/trading-backtesting-sub003/broadcast"
	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

func analysisEnvelope(symbols ...string) core.Envelope {
	return core.NewEnvelope(core.RoleOrchestrator, core.RoleSignal, core.MessageAnalysisRequest, core.AnalysisRequest{
		Symbols: symbols,
	})
}

func TestSignalAgentProducesTradeSignal(t *testing.T) {
	backend := model.NewMockBackend()
	backend.AddResponse(
		"Universe: AAPL, MSFT\nTimeframe: 1D\nIdentify the strongest trade.",
		`{"symbol":"AAPL","direction":1,"confidence":0.82,"expected_return":0.05,"holding_period":"1D","summary":"momentum breakout"}`,
	)

	coord := &recordingCoordinator{}
	bus := broadcast.NewService(coord)
	a := NewSignalAgent(backend, bus)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	resp, err := a.Process(ctx, analysisEnvelope("AAPL", "MSFT"))
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, core.MessageTradeSignal, resp.Type)
	assert.Equal(t, core.RoleSignal, resp.From)
	assert.Equal(t, core.RoleRisk, resp.To)
	assert.True(t, resp.RequiresResponse)

	sig, ok := resp.Payload.(core.TradeSignal)
	require.True(t, ok)
	assert.Equal(t, "AAPL", sig.Symbol)
	assert.Equal(t, 1, sig.Direction)
	assert.Equal(t, 0.82, sig.Confidence)
	assert.Equal(t, 0.05, sig.ExpectedReturn)

	decisions := coord.byChannel(broadcast.ChannelAgentDecisions)
	require.Len(t, decisions, 1)
	analyses := coord.byChannel(broadcast.ChannelAgentAnalysis)
	require.Len(t, analyses, 1)
	assert.Equal(t, "momentum breakout", analyses[0].Data["analysis"])

	assert.Equal(t, core.StatusIdle, a.Status().Status)
}

func TestSignalAgentMalformedModelReply(t *testing.T) {
	backend := model.NewMockBackend()
	// Default mock reply is free text, not JSON.
	a := NewSignalAgent(backend, nil)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	msg := analysisEnvelope("SPY")
	resp, err := a.Process(ctx, msg)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, core.MessageErrorResponse, resp.Type)
	assert.Equal(t, msg.From, resp.To)
	assert.Equal(t, core.PriorityHigh, resp.Priority)
	assert.Equal(t, core.StatusError, a.Status().Status)
}

func TestSignalAgentEmptyUniverse(t *testing.T) {
	a := NewSignalAgent(model.NewMockBackend(), nil)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	resp, err := a.Process(ctx, analysisEnvelope())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, core.MessageErrorResponse, resp.Type)

	payload, ok := resp.Payload.(core.ErrorPayload)
	require.True(t, ok)
	assert.Contains(t, payload.Message, "empty symbol universe")
}

func TestSignalAgentConfidenceOutOfRange(t *testing.T) {
	backend := model.NewMockBackend()
	backend.AddResponse(
		"Universe: SPY\nTimeframe: 1D\nIdentify the strongest trade.",
		`{"symbol":"SPY","direction":1,"confidence":1.4,"expected_return":0.02,"holding_period":"4H","summary":"x"}`,
	)
	a := NewSignalAgent(backend, nil)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	resp, err := a.Process(ctx, analysisEnvelope("SPY"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, core.MessageErrorResponse, resp.Type)
}

func TestSignalAgentUnreachableCoordinator(t *testing.T) {
	backend := model.NewMockBackend()
	backend.AddResponse(
		"Universe: AAPL\nTimeframe: 1D\nIdentify the strongest trade.",
		`{"symbol":"AAPL","direction":1,"confidence":0.7,"expected_return":0.03,"holding_period":"1D","summary":"ok"}`,
	)

	// A nil coordinator makes every publish fail; the agent must not notice.
	bus := broadcast.NewService(nil)
	a := NewSignalAgent(backend, bus)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	resp, err := a.Process(ctx, analysisEnvelope("AAPL"))
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, core.MessageTradeSignal, resp.Type)

	snap := a.Status()
	assert.Equal(t, core.StatusIdle, snap.Status)
	assert.Equal(t, 0, snap.Metrics.ErrorCount)
	assert.Equal(t, 1.0, snap.Metrics.SuccessRate)
}

func TestSignalAgentRejectsWrongMessageType(t *testing.T) {
	a := NewSignalAgent(model.NewMockBackend(), nil)
	ctx := context.Background()
	require.NoError(t, a.Initialize(ctx))

	msg := core.NewEnvelope(core.RoleRisk, core.RoleSignal, core.MessageTradeSignal, core.TradeSignal{Symbol: "SPY"})
	resp, err := a.Process(ctx, msg)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, core.MessageErrorResponse, resp.Type)
}
