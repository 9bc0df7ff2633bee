package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ScientiaCapital/trading-backtesting-sub003/domain"
)

// MessageType tags an envelope with its place in the closed message
// vocabulary. Each type pairs with exactly one Payload shape.
type MessageType string

const (
	// MessageAnalysisRequest asks a signal agent to analyze a set of symbols.
	MessageAnalysisRequest MessageType = "ANALYSIS_REQUEST"
	// MessageAnalysisResult carries a signal agent's analysis back.
	MessageAnalysisResult MessageType = "ANALYSIS_RESULT"
	// MessageTradeSignal proposes a trade to the risk agent.
	MessageTradeSignal MessageType = "TRADE_SIGNAL"
	// MessageRiskAssessment is the risk agent's sizing verdict.
	MessageRiskAssessment MessageType = "RISK_ASSESSMENT"
	// MessageExecutionRequest asks the execution agent to work an order.
	MessageExecutionRequest MessageType = "EXECUTION_REQUEST"
	// MessageExecutionReport reports the outcome of an execution.
	MessageExecutionReport MessageType = "EXECUTION_REPORT"
	// MessageComplianceCheck asks the compliance agent to vet an order.
	MessageComplianceCheck MessageType = "COMPLIANCE_CHECK"
	// MessageComplianceVerdict reports the outcome of a compliance check.
	MessageComplianceVerdict MessageType = "COMPLIANCE_VERDICT"
	// MessageStatusRequest asks any agent for a status snapshot.
	MessageStatusRequest MessageType = "STATUS_REQUEST"
	// MessageErrorResponse is synthesized when a handler fails.
	MessageErrorResponse MessageType = "ERROR_RESPONSE"
	// MessageBroadcast is a fan-out notification addressed to RoleAll.
	MessageBroadcast MessageType = "BROADCAST"
)

// Priority orders envelopes for dispatcher scheduling. Agents themselves
// never reorder by priority; it is dispatcher-facing metadata only.
type Priority int

const (
	// PriorityLow is background work.
	PriorityLow Priority = iota
	// PriorityNormal is the default.
	PriorityNormal
	// PriorityHigh is used for error responses and urgent signals.
	PriorityHigh
	// PriorityCritical preempts everything else in a batch.
	PriorityCritical
)

// String returns the symbolic name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Payload is the closed union of message bodies. Concrete payload types
// implement the unexported marker so the set cannot grow outside this
// package's taxonomy. Receivers type-switch on the concrete payload instead
// of decoding an opaque blob.
type Payload interface{ isPayload() }

// AnalysisRequest asks for signal analysis over a symbol universe.
type AnalysisRequest struct {
	Symbols   []string
	Timeframe string
}

func (AnalysisRequest) isPayload() {}

// AnalysisResult is the narrative outcome of a signal analysis.
type AnalysisResult struct {
	Symbol     string
	Summary    string
	Confidence float64
}

func (AnalysisResult) isPayload() {}

// TradeSignal proposes a directional trade. Direction is 1 (long),
// -1 (short) or 0 (neutral).
type TradeSignal struct {
	Symbol         string
	Direction      int
	Confidence     float64
	ExpectedReturn float64
	HoldingPeriod  string
}

func (TradeSignal) isPayload() {}

// RiskAssessment is the risk agent's verdict on a trade signal.
type RiskAssessment struct {
	Approved     bool
	Symbol       string
	PositionSize decimal.Decimal
	Reasons      []string
}

func (RiskAssessment) isPayload() {}

// ExecutionRequest instructs the execution agent to work an order.
type ExecutionRequest struct {
	Order domain.Order
}

func (ExecutionRequest) isPayload() {}

// ExecutionReport carries the post-execution order state and the strategy
// that was used ("aggressive", "passive", "adaptive").
type ExecutionReport struct {
	Order    domain.Order
	Strategy string
}

func (ExecutionReport) isPayload() {}

// ComplianceCheck asks for pre-trade vetting of an order.
type ComplianceCheck struct {
	Order domain.Order
}

func (ComplianceCheck) isPayload() {}

// ComplianceVerdict reports rule violations found during a check.
type ComplianceVerdict struct {
	Passed     bool
	Violations []string
}

func (ComplianceVerdict) isPayload() {}

// StatusRequest has no body; the response is the agent's snapshot.
type StatusRequest struct{}

func (StatusRequest) isPayload() {}

// ErrorPayload describes a handler failure. RefID is the id of the message
// whose handling failed.
type ErrorPayload struct {
	RefID   string
	Message string
}

func (ErrorPayload) isPayload() {}

// BroadcastNotice is a free-form fan-out notification.
type BroadcastNotice struct {
	Note string
	Data map[string]any
}

func (BroadcastNotice) isPayload() {}

// Envelope is the immutable message exchanged between agents. IDs are never
// reused; timestamps are monotonic per sender process (time.Now is
// monotonic-clock backed within a process).
type Envelope struct {
	ID               string
	From             AgentRole
	To               AgentRole
	Type             MessageType
	Payload          Payload
	Timestamp        time.Time
	Priority         Priority
	RequiresResponse bool
}

// EnvelopeOption mutates envelope defaults at construction time.
type EnvelopeOption func(*Envelope)

// WithPriority overrides the default PriorityNormal.
func WithPriority(p Priority) EnvelopeOption {
	return func(e *Envelope) { e.Priority = p }
}

// WithResponseRequired hints the dispatcher that the sender expects a reply.
func WithResponseRequired() EnvelopeOption {
	return func(e *Envelope) { e.RequiresResponse = true }
}

// NewEnvelope constructs an envelope with a fresh uuid and UTC timestamp.
func NewEnvelope(from, to AgentRole, typ MessageType, payload Payload, opts ...EnvelopeOption) Envelope {
	e := Envelope{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		Priority:  PriorityNormal,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// NewErrorResponse synthesizes the ERROR_RESPONSE envelope returned when a
// handler fails: addressed back to the original sender, high priority,
// carrying the original message id and the error description.
func NewErrorResponse(from, to AgentRole, refID string, err error) Envelope {
	return NewEnvelope(from, to, MessageErrorResponse, ErrorPayload{
		RefID:   refID,
		Message: err.Error(),
	}, WithPriority(PriorityHigh))
}
