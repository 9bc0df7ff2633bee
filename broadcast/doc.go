// Package broadcast translates domain occurrences (orders, positions, agent
// decisions, alerts, P&L, system status) into events on named channels and
// forwards them to an external coordinator that owns the live subscriber
// connections.
//
// Publishing is best-effort: a failed publish is logged and discarded, never
// surfaced to the trading operation that triggered it. The diagnostic status
// query is the one path that reports coordinator errors.
package broadcast
