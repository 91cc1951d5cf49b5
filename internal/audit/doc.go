// Package audit defines the observability sink that receives decision and
// modifier events from the core.
//
// Sinks are fire-and-forget: they return nothing, and a failing sink can
// never change an authorization decision or a weight. Implementations in
// this package log through log/slog; internal/store provides a SQLite sink.
package audit
