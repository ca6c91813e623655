// Package pkg provides shared utilities for the softinput stack.
//
// This package contains common functionality used across the monitor,
// device, and stream layers, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for input-stack errors
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with input-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentStream, "device opened", "device", id)
//
// # Errors
//
// Common input-stack errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrClosed) {
//	    // Stream already shut down
//	}
package pkg
