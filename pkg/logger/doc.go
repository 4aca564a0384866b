// Package logger builds configured log/slog loggers and provides typed
// attribute helpers so log keys stay consistent across the codebase.
//
// New returns production-safe defaults (JSON at INFO to stdout); use
// WithDevelopment for text output at debug level. The attribute helpers
// (Error, UserID, Component, Event) are nil-safe and return empty attrs
// for absent values.
package logger
