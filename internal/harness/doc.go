// Package harness runs YAML scenarios through the full submission pipeline.
//
// Each scenario gets a fresh in-memory database, a deterministic clock
// (seq starts at 1) and sequential submission IDs ("sub-0001", ...), so the
// same scenario always produces the same trace.
//
// # Scenario Format
//
//	name: gold_bar_vote
//	description: "What this scenario validates"
//	policy: policy.cue              # optional, relative to the scenario file
//	identities:                     # optional, seeded into the database
//	  - identifier: did:t2:writer
//	    tier: READ_WRITE
//	    integrity_hash: "0x1000"
//	modifiers: [0.01, -1.0]         # optional external modifier records
//	min_publish_weight: 1000        # optional
//	steps:
//	  - sender: did:t0:protocol-overseer
//	    intent: GOLD_BAR_VOTE_II
//	    magnitude: 900
//	    timestamp: 1700000000
//	    modifier_index: 0           # or modifier: <uint64>
//	    expect:
//	      outcome: accepted         # accepted | rejected
//	      status: published         # accepted only
//	      code: INTENT_FORBIDDEN    # rejected only
//	      modifier: 2
//	      weight: 1829906965114914194
//	      min_weight: 9000000000
//
// When neither the policy file nor the scenario lists identities, the
// built-in identity table is seeded.
//
// # Golden Traces
//
// The trace records, per step, the authorization decision, any modifier
// degrade event, and the submission or rejection. Snapshot renders it as
// canonical JSON for goldie comparison.
package harness
