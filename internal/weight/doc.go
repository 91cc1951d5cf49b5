// Package weight computes the deterministic priority of a transaction.
//
//	integrity = StableHash(tx) / 2
//	amplified = Amplify(magnitude)        // lane reduction, == magnitude*16*8
//	bonus     = IntentBonus if intent == ReservedIntent else 0
//	weight    = integrity + amplified + bonus + modifier   (mod 2^64)
//
// Everything here is pure: no I/O, no logging, no randomness. The same
// inputs produce bit-identical output in every process.
package weight
