// Package core defines the contracts shared by every part of the trading
// agent runtime: the Agent interface and its lifecycle states, the message
// envelope and its closed payload taxonomy, per-agent performance metrics,
// and the error types used at component boundaries.
//
// The package is intentionally leaf-like: it depends only on the domain types
// and carries no orchestration logic of its own.
package core
