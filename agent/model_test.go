package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

func TestRouterDefaults(t *testing.T) {
	r := NewRouter("")

	assert.Equal(t, "claude-sonnet-4-20250514", r.Resolve(core.RoleSignal))
	assert.Equal(t, "claude-sonnet-4-20250514", r.Resolve(core.RoleRisk))
	assert.Equal(t, "claude-3-5-haiku-20241022", r.Resolve(core.RoleExecution))
	assert.Equal(t, "claude-3-5-haiku-20241022", r.Resolve(core.RoleCompliance))
}

func TestRouterFallback(t *testing.T) {
	r := NewRouter("gpt-4o-mini")
	assert.Equal(t, "gpt-4o-mini", r.Resolve(core.RoleOrchestrator))
}

func TestRouterSetOverride(t *testing.T) {
	r := NewRouter("")
	r.Set(core.RoleSignal, "claude-opus-4-20250514")
	assert.Equal(t, "claude-opus-4-20250514", r.Resolve(core.RoleSignal))

	routes := r.Routes()
	routes[core.RoleRisk] = "mutated"
	assert.Equal(t, "claude-sonnet-4-20250514", r.Resolve(core.RoleRisk), "Routes() must return a copy")
}

// passthroughHandler is the minimal Handler for constructing a bare ModelAgent.
type passthroughHandler struct{}

func (passthroughHandler) Setup(context.Context) error    { return nil }
func (passthroughHandler) Teardown(context.Context) error { return nil }
func (passthroughHandler) HandleMessage(context.Context, core.Envelope) (*core.Envelope, error) {
	return nil, nil
}

func TestCallModelRoutesByRole(t *testing.T) {
	backend := model.NewMockBackend()
	backend.AddResponse("analyze", `{"ok":true}`)

	a := NewModelAgent(core.RoleExecution, backend, passthroughHandler{})

	raw, err := a.CallModel(context.Background(), "analyze", "system")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, raw)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "claude-3-5-haiku-20241022", calls[0].BackendID)
	assert.Equal(t, "system", calls[0].SystemPrompt)
}

func TestCallModelWrapsBackendFailure(t *testing.T) {
	backend := model.NewMockBackend()
	backend.FailWith(errors.New("rate limited"))

	a := NewModelAgent(core.RoleSignal, backend, passthroughHandler{})

	_, err := a.CallModel(context.Background(), "analyze", "")
	require.Error(t, err)

	var infErr *core.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, "claude-sonnet-4-20250514", infErr.Backend)
	assert.Contains(t, infErr.Error(), "rate limited")
}

func TestCallModelTimeout(t *testing.T) {
	backend := model.NewMockBackend()
	backend.SetDelay(time.Second)

	a := NewModelAgent(core.RoleSignal, backend, passthroughHandler{}, func(o *ModelAgentOptions) {
		o.ModelTimeout = 10 * time.Millisecond
	})

	start := time.Now()
	_, err := a.CallModel(context.Background(), "slow", "")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	var infErr *core.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type signalShape struct {
	Symbol     string  `json:"symbol"`
	Direction  int     `json:"direction"`
	Confidence float64 `json:"confidence"`
}

func TestParseResponsePlainJSON(t *testing.T) {
	out, err := ParseResponse[signalShape](`{"symbol":"AAPL","direction":1,"confidence":0.82}`)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", out.Symbol)
	assert.Equal(t, 1, out.Direction)
	assert.Equal(t, 0.82, out.Confidence)
}

func TestParseResponseStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"symbol\":\"TSLA\",\"direction\":-1,\"confidence\":0.6}\n```"
	out, err := ParseResponse[signalShape](raw)
	require.NoError(t, err)
	assert.Equal(t, "TSLA", out.Symbol)
	assert.Equal(t, -1, out.Direction)
}

func TestParseResponseBareFence(t *testing.T) {
	raw := "```\n{\"symbol\":\"SPY\",\"direction\":0,\"confidence\":0.5}\n```"
	out, err := ParseResponse[signalShape](raw)
	require.NoError(t, err)
	assert.Equal(t, "SPY", out.Symbol)
}

func TestParseResponseMalformed(t *testing.T) {
	_, err := ParseResponse[signalShape]("the market looks bullish today")
	require.Error(t, err)

	var malErr *core.MalformedResponseError
	require.ErrorAs(t, err, &malErr)
	assert.Equal(t, "the market looks bullish today", malErr.Raw)
}
