package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ScientiaCapital/trading-backtesting-sub003/core"
	"github.com/ScientiaCapital/trading-backtesting-sub003/model"
)

// DefaultBackend is the inference backend used for roles without an explicit
// route.
const DefaultBackend = "claude-sonnet-4-20250514"

// DefaultModelTimeout bounds a single inference call. It is a tunable
// constant, not a law of the domain.
const DefaultModelTimeout = 30 * time.Second

// Router is the deterministic routing table mapping agent roles to inference
// backend identifiers. It is pure configuration: callers override routes per
// deployment instead of branching in code. Unknown roles resolve to the
// fallback backend.
type Router struct {
	routes   map[core.AgentRole]string
	fallback string
}

// NewRouter builds a router with the default role assignments. Override
// individual routes with Set, or replace everything via Routes().
func NewRouter(fallback string) *Router {
	if fallback == "" {
		fallback = DefaultBackend
	}
	return &Router{
		routes: map[core.AgentRole]string{
			core.RoleSignal:     "claude-sonnet-4-20250514",
			core.RoleRisk:       "claude-sonnet-4-20250514",
			core.RoleExecution:  "claude-3-5-haiku-20241022",
			core.RoleCompliance: "claude-3-5-haiku-20241022",
		},
		fallback: fallback,
	}
}

// Set assigns a backend identifier to a role.
func (r *Router) Set(role core.AgentRole, backendID string) {
	r.routes[role] = backendID
}

// Resolve returns the backend identifier for a role, falling back to the
// default backend for unknown roles.
func (r *Router) Resolve(role core.AgentRole) string {
	if id, ok := r.routes[role]; ok {
		return id
	}
	return r.fallback
}

// Routes returns a copy of the routing table for inspection or export.
func (r *Router) Routes() map[core.AgentRole]string {
	out := make(map[core.AgentRole]string, len(r.routes))
	for k, v := range r.routes {
		out[k] = v
	}
	return out
}

// ModelAgentOptions configures a ModelAgent.
type ModelAgentOptions struct {
	Options
	Router       *Router
	ModelTimeout time.Duration
}

// ModelAgent layers timeout-bounded inference calls and response decoding on
// top of the Base state machine. Concrete agents embed it and use CallModel
// from their HandleMessage; ModelAgent also supplies no-op Setup/Teardown so
// embedders only implement the hooks they need.
type ModelAgent struct {
	Base
	backend model.Backend
	router  *Router
	timeout time.Duration
}

// NewModelAgent constructs the specialization for the given role. The handler
// is the embedding concrete agent.
func NewModelAgent(role core.AgentRole, backend model.Backend, handler Handler, optFns ...func(o *ModelAgentOptions)) ModelAgent {
	opts := ModelAgentOptions{
		Router:       NewRouter(DefaultBackend),
		ModelTimeout: DefaultModelTimeout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return ModelAgent{
		Base: NewBase(role, handler, func(o *Options) {
			if opts.Logger != nil {
				o.Logger = opts.Logger
			}
		}),
		backend: backend,
		router:  opts.Router,
		timeout: opts.ModelTimeout,
	}
}

// Setup is the default no-op initialization hook.
func (a *ModelAgent) Setup(context.Context) error { return nil }

// Teardown is the default no-op shutdown hook.
func (a *ModelAgent) Teardown(context.Context) error { return nil }

// CallModel invokes the routed inference backend with a hard timeout. Any
// failure (timeout, transport error) is wrapped into *core.InferenceError;
// the caller decides whether that becomes an ERROR_RESPONSE. No retries
// happen at this layer.
func (a *ModelAgent) CallModel(ctx context.Context, prompt, systemPrompt string) (string, error) {
	backendID := a.router.Resolve(a.Role())

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.backend.Invoke(ctx, backendID, prompt, systemPrompt)
	if err != nil {
		a.Logger().Error("model call failed",
			"agent_id", a.ID(),
			"backend", backendID,
			"duration", time.Since(start),
			"error", err,
		)
		return "", &core.InferenceError{Backend: backendID, Err: err}
	}

	a.Logger().Debug("model call completed",
		"agent_id", a.ID(),
		"backend", backendID,
		"duration", time.Since(start),
	)

	return raw, nil
}

// ParseResponse decodes a backend's raw textual reply into T. Markdown code
// fences around the JSON body are tolerated since models habitually add
// them. Decoding failure yields *core.MalformedResponseError, never a silent
// zero value.
func ParseResponse[T any](raw string) (T, error) {
	var out T
	body := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return out, &core.MalformedResponseError{Raw: raw, Err: err}
	}
	return out, nil
}

// stripCodeFence removes a surrounding ```json ... ``` (or bare ```) fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the language tag line
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
