// Package domain holds the typed trading objects exchanged between agents and
// mapped onto broadcast events: orders, positions, decisions, alerts and
// status reports. Monetary quantities use decimal.Decimal to avoid binary
// float drift in position and P&L arithmetic.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide identifies the direction of an order.
type OrderSide string

const (
	// SideBuy opens or increases a long exposure.
	SideBuy OrderSide = "buy"
	// SideSell closes a long or opens a short exposure.
	SideSell OrderSide = "sell"
)

// OrderStatus tracks an order through its broker lifecycle.
type OrderStatus string

const (
	// OrderStatusNew is an order accepted but not yet working.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusFilled is a completely executed order.
	OrderStatusFilled OrderStatus = "filled"
	// OrderStatusCancelled is an order withdrawn before completion.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRejected is an order refused by the broker or compliance.
	OrderStatusRejected OrderStatus = "rejected"
)

// Order is a broker order as seen by the execution agent.
type Order struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Side           OrderSide       `json:"side"`
	Qty            decimal.Decimal `json:"qty"`
	Type           string          `json:"type"` // "market" or "limit"
	Status         OrderStatus     `json:"status"`
	FilledQty      decimal.Decimal `json:"filled_qty"`
	FilledAvgPrice decimal.Decimal `json:"filled_avg_price"`
}

// Position is an open holding with its valuation snapshot.
type Position struct {
	Symbol         string          `json:"symbol"`
	Qty            decimal.Decimal `json:"qty"`
	Side           OrderSide       `json:"side"`
	MarketValue    decimal.Decimal `json:"market_value"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	UnrealizedPL   decimal.Decimal `json:"unrealized_pl"`
	UnrealizedPLPC decimal.Decimal `json:"unrealized_plpc"`
}

// AlertSeverity grades alerts for downstream routing.
type AlertSeverity string

const (
	// AlertInfo is informational only.
	AlertInfo AlertSeverity = "info"
	// AlertWarning needs attention but no immediate action.
	AlertWarning AlertSeverity = "warning"
	// AlertError indicates a failed operation.
	AlertError AlertSeverity = "error"
	// AlertCritical requires immediate operator action.
	AlertCritical AlertSeverity = "critical"
)

// SystemState is the coarse health of the whole runtime.
type SystemState string

const (
	// SystemOnline means all components are operating normally.
	SystemOnline SystemState = "online"
	// SystemDegraded means the runtime is up with reduced capability.
	SystemDegraded SystemState = "degraded"
	// SystemOffline means the runtime is stopped.
	SystemOffline SystemState = "offline"
)

// Decision is the structured outcome of an agent deliberation. Action is the
// agent vocabulary ("buy", "sell", "hold", "approve", "reject", ...); Detail
// carries agent-specific fields.
type Decision struct {
	Action     string         `json:"action"`
	Symbol     string         `json:"symbol,omitempty"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	DecidedAt  time.Time      `json:"decided_at"`
}

// DailyPnL is the running profit-and-loss figure for the current session.
type DailyPnL struct {
	Value decimal.Decimal `json:"value"`
	AsOf  time.Time       `json:"as_of"`
}
