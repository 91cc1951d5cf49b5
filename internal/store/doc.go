// Package store provides SQLite-backed durable storage for accord.
//
// Three concerns share one database:
//   - Identities: the durable identity backend, served through IdentityResolver
//   - Audit: decision and modifier degrade events appended by AuditSink
//   - Ledger: weighted submissions, written once and read back in order
//
// # Ordering
//
// Every list query orders by seq ASC, id ASC COLLATE BINARY. seq is the
// engine's logical clock, never wall time, so two reads of the same
// database return identical slices.
//
// # Unsigned values
//
// SQLite INTEGER is signed 64-bit. Weights, modifiers, integrity hashes and
// timestamps are uint64 and are stored bit-cast to int64; the read path
// casts them back, so values above 2^63 round-trip exactly but compare as
// negative inside SQL.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
