// Package agents contains the concrete decision units of the trading
// runtime: the model-backed signal agent plus the rule-based risk, execution
// and compliance agents. Each wires its message logic into the shared
// lifecycle state machine from the agent package.
package agents
