// Package logging provides a minimal logging interface and adapters for the
// trading agent runtime.
//
// The Logger interface defines the standard structured logging methods
// (Debug, Info, Warn, Error) that agents, the dispatcher and the broadcast
// service use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	svc := broadcast.NewService(coord, func(o *broadcast.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
