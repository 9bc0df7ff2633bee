package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
)

// stubHandler is a scriptable Handler for exercising the Base state machine.
type stubHandler struct {
	mu         sync.Mutex
	setupErr   error
	handleErr  error
	handleResp *core.Envelope
	delay      time.Duration
	inFlight   int
	maxFlight  int
	handled    int
}

func (h *stubHandler) Setup(context.Context) error { return h.setupErr }

func (h *stubHandler) HandleMessage(_ context.Context, _ core.Envelope) (*core.Envelope, error) {
	h.mu.Lock()
	h.inFlight++
	if h.inFlight > h.maxFlight {
		h.maxFlight = h.inFlight
	}
	h.handled++
	delay := h.delay
	h.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	h.mu.Lock()
	h.inFlight--
	h.mu.Unlock()

	return h.handleResp, h.handleErr
}

func (h *stubHandler) Teardown(context.Context) error { return nil }

func newTestEnvelope() core.Envelope {
	return core.NewEnvelope(core.RoleOrchestrator, core.RoleSignal, core.MessageStatusRequest, core.StatusRequest{})
}

func TestBaseLifecycle(t *testing.T) {
	b := NewBase(core.RoleSignal, &stubHandler{})
	ctx := context.Background()

	snap := b.Status()
	assert.Equal(t, core.StatusIdle, snap.Status)
	assert.Equal(t, core.RoleSignal, snap.Role)

	require.NoError(t, b.Initialize(ctx))

	err := b.Initialize(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidLifecycle)
}

func TestBaseProcessBeforeInitialize(t *testing.T) {
	b := NewBase(core.RoleSignal, &stubHandler{})

	_, err := b.Process(context.Background(), newTestEnvelope())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidLifecycle)
}

func TestBaseProcessSuccess(t *testing.T) {
	reply := core.NewEnvelope(core.RoleSignal, core.RoleRisk, core.MessageTradeSignal, core.TradeSignal{Symbol: "SPY"})
	h := &stubHandler{handleResp: &reply}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	resp, err := b.Process(ctx, newTestEnvelope())
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, core.MessageTradeSignal, resp.Type)

	snap := b.Status()
	assert.Equal(t, core.StatusIdle, snap.Status)
	assert.Equal(t, 1, snap.Metrics.DecisionsToday)
	assert.Equal(t, 0, snap.Metrics.ErrorCount)
	assert.Equal(t, 1.0, snap.Metrics.SuccessRate)
}

func TestBaseProcessContainsHandlerError(t *testing.T) {
	h := &stubHandler{handleErr: errors.New("analysis blew up")}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	msg := newTestEnvelope()
	resp, err := b.Process(ctx, msg)
	require.NoError(t, err, "handler errors must never escape Process")
	require.NotNil(t, resp)

	assert.Equal(t, core.MessageErrorResponse, resp.Type)
	assert.Equal(t, core.RoleSignal, resp.From)
	assert.Equal(t, msg.From, resp.To)
	assert.Equal(t, core.PriorityHigh, resp.Priority)

	payload, ok := resp.Payload.(core.ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, msg.ID, payload.RefID)
	assert.Contains(t, payload.Message, "analysis blew up")

	snap := b.Status()
	assert.Equal(t, core.StatusError, snap.Status)
	assert.Equal(t, 1, snap.Metrics.ErrorCount)
	assert.Equal(t, 0.0, snap.Metrics.SuccessRate)
}

func TestBaseDispatchableAfterError(t *testing.T) {
	h := &stubHandler{handleErr: errors.New("transient")}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	_, err := b.Process(ctx, newTestEnvelope())
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, b.Status().Status)

	h.handleErr = nil
	resp, err := b.Process(ctx, newTestEnvelope())
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, core.StatusIdle, b.Status().Status)
	assert.Equal(t, 0.5, b.Status().Metrics.SuccessRate)
}

func TestBaseShutdownIdempotent(t *testing.T) {
	b := NewBase(core.RoleSignal, &stubHandler{})
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	require.NoError(t, b.Shutdown(ctx))
	require.NoError(t, b.Shutdown(ctx))

	_, err := b.Process(ctx, newTestEnvelope())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidLifecycle)
}

func TestBaseProcessSingleFlight(t *testing.T) {
	h := &stubHandler{delay: 20 * time.Millisecond}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Process(ctx, newTestEnvelope())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.maxFlight, "handler overlapped with itself")
	assert.Equal(t, 8, b.Status().Metrics.DecisionsToday)
}

func TestBaseStatusDoesNotBlockOnHandler(t *testing.T) {
	h := &stubHandler{delay: 100 * time.Millisecond}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	done := make(chan struct{})
	go func() {
		_, _ = b.Process(ctx, newTestEnvelope())
		close(done)
	}()

	// Wait for the handler to be in flight, then snapshot.
	require.Eventually(t, func() bool {
		return b.Status().Status == core.StatusAnalyzing
	}, time.Second, time.Millisecond)

	start := time.Now()
	snap := b.Status()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, core.StatusAnalyzing, snap.Status)

	<-done
}

func TestBaseResetDailyMetrics(t *testing.T) {
	h := &stubHandler{handleErr: errors.New("boom")}
	b := NewBase(core.RoleSignal, h)
	ctx := context.Background()
	require.NoError(t, b.Initialize(ctx))

	_, err := b.Process(ctx, newTestEnvelope())
	require.NoError(t, err)

	b.ResetDailyMetrics()

	m := b.Status().Metrics
	assert.Equal(t, 0, m.DecisionsToday)
	assert.Equal(t, 0, m.ErrorCount)
	assert.Equal(t, 1.0, m.SuccessRate)
}
