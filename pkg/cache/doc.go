// Package cache provides the short-lived key/value stores used for pending
// two-factor secrets: a Redis-backed store for production and an in-memory
// TTL store for tests and development.
//
// Both stores share the same three-operation surface (Get, Set with TTL,
// Delete) and report a missing or expired key as a plain miss rather than an
// error, so callers can treat "no pending secret" as ordinary control flow.
//
// Connect wraps go-redis with retry logic driven by the env-tagged Config so
// services can come up before Redis does.
package cache
