// Package logging provides a minimal logging interface and adapters for hermes.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that agents, tools and model adapters use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NewDebugLogger for verbose local development output
//   - NoOpLogger for silent operation (the default)
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
