// Package policy compiles CUE policy files.
//
// A policy file configures the per-tier intent rules and an optional static
// identity table:
//
//	tiers: {
//		ADMIN: reserved: ["GOLD_BAR_VOTE_II", "OVERRIDE"]
//		READ_WRITE: prefixes: ["Read", "Write", "ACQUISITION"]
//	}
//	identities: [
//		{identifier: "did:t0:protocol-overseer", tier: "OVERRIDE", integrity_hash: "0xDEADBEEFC0DEC0DE"},
//		{prefix: "did:t3:", tier: "AUDIT_ONLY", integrity_hash: "0xFACEBEEF"},
//	]
//
// OVERRIDE cannot be configured; it is always allow-all. A file without a
// tiers block uses the built-in policy.
package policy
