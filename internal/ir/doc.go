// Package ir provides the shared record types for accord.
//
// This package contains type definitions and content hashing only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Records are value types and never mutated after construction
//   - AccessTier is a ranked tag, never a privilege hierarchy
//   - All JSON tags use snake_case
//   - Logical clocks (seq) order persisted records, never wall-clock time
package ir
