// Package model defines the inference backend client used by AI-backed
// agents. A Backend takes a backend identifier (resolved by the agent's
// routing table) plus prompt and system prompt, and returns the raw textual
// completion. Provider adapters live in the anthropic and openai
// sub-packages; MockBackend serves tests and examples.
package model
