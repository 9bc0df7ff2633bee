package model

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Backend is the minimal interface agents use to reach an inference backend.
// backendID names the concrete model ("claude-sonnet-4-20250514",
// "gpt-4o-mini", ...) as resolved by the agent's routing table. systemPrompt
// may be empty. Implementations must honor ctx cancellation and deadline;
// the caller owns timeout policy.
type Backend interface {
	Invoke(ctx context.Context, backendID, prompt, systemPrompt string) (string, error)

	// Info returns metadata about the backend implementation.
	Info() Info
}

// Info contains metadata about a backend implementation.
type Info struct {
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// MockBackend is a lightweight in-memory Backend useful for tests and
// examples. Responses are keyed by prompt; unknown prompts get a generated
// reply. An optional per-call delay makes timeout paths testable.
type MockBackend struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	delay     time.Duration
	calls     []MockCall
}

// MockCall records a single Invoke for assertion in tests.
type MockCall struct {
	BackendID    string
	Prompt       string
	SystemPrompt string
}

// NewMockBackend constructs an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockBackend) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every subsequent Invoke return err.
func (m *MockBackend) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes Invoke block for d (or until ctx expires) before replying.
func (m *MockBackend) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns a copy of all recorded invocations.
func (m *MockBackend) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Invoke implements Backend.
func (m *MockBackend) Invoke(ctx context.Context, backendID, prompt, systemPrompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{BackendID: backendID, Prompt: prompt, SystemPrompt: systemPrompt})
	err := m.err
	delay := m.delay
	resp, ok := m.responses[prompt]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		resp = fmt.Sprintf("mock response to: %s", prompt)
	}
	return resp, nil
}

// Info implements Backend.
func (m *MockBackend) Info() Info { return Info{Provider: "mock"} }
