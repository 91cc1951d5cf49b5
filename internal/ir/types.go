package ir

import (
	"fmt"
	"strings"
)

// AccessTier is a ranked authorization class.
//
// The rank exists for audit output only. Permissions are never inherited
// from a lower tier; each tier carries its own rule.
type AccessTier string

// Tiers, most to least privileged.
const (
	TierOverride  AccessTier = "OVERRIDE"
	TierAdmin     AccessTier = "ADMIN"
	TierReadWrite AccessTier = "READ_WRITE"
	TierAuditOnly AccessTier = "AUDIT_ONLY"
	TierDefault   AccessTier = "DEFAULT"
)

var orderedTiers = []AccessTier{
	TierOverride,
	TierAdmin,
	TierReadWrite,
	TierAuditOnly,
	TierDefault,
}

// Tiers returns all known tiers, most privileged first.
func Tiers() []AccessTier {
	out := make([]AccessTier, len(orderedTiers))
	copy(out, orderedTiers)
	return out
}

// Rank returns the tier position (0 = OVERRIDE). Unknown tiers rank -1.
func (t AccessTier) Rank() int {
	for i, known := range orderedTiers {
		if known == t {
			return i
		}
	}
	return -1
}

// Known reports whether t is one of the declared tiers.
func (t AccessTier) Known() bool {
	return t.Rank() >= 0
}

// ParseTier parses a tier name. The legacy "T<n>_" prefixed form
// (e.g. "T1_ADMIN") is accepted and must agree with the tier's rank.
func ParseTier(s string) (AccessTier, error) {
	name := strings.TrimSpace(s)
	rank := -1
	if len(name) > 3 && name[0] == 'T' && name[2] == '_' && name[1] >= '0' && name[1] <= '9' {
		rank = int(name[1] - '0')
		name = name[3:]
	}

	tier := AccessTier(name)
	if !tier.Known() {
		return "", fmt.Errorf("unknown access tier %q", s)
	}
	if rank >= 0 && rank != tier.Rank() {
		return "", fmt.Errorf("access tier %q: rank prefix T%d does not match %s", s, rank, tier)
	}
	return tier, nil
}

// Credential is a resolved identity record.
type Credential struct {
	Identifier    string     `json:"identifier"`
	Tier          AccessTier `json:"tier"`
	IntegrityHash uint64     `json:"integrity_hash"`
}

// MaxSignalMagnitude is the upper bound of Transaction.SignalMagnitude.
const MaxSignalMagnitude = 1024

// Transaction is a caller request. Timestamp is advisory and not checked
// for monotonicity.
type Transaction struct {
	Sender          string `json:"sender"`
	SignalMagnitude uint16 `json:"signal_magnitude"`
	Intent          string `json:"intent"`
	Timestamp       uint64 `json:"timestamp"`
}

// SubmissionStatus records whether a weighted submission cleared the
// publish threshold.
type SubmissionStatus string

const (
	StatusPublished SubmissionStatus = "published"
	StatusDropped   SubmissionStatus = "dropped"
)

// VerificationFlag marks a published submission as verified.
const VerificationFlag = "V"

// Submission is an authorized, weighted transaction as appended to the ledger.
type Submission struct {
	ID               string           `json:"id"`
	Seq              int64            `json:"seq"`
	TxDigest         string           `json:"tx_digest"`
	Transaction      Transaction      `json:"transaction"`
	Message          string           `json:"message,omitempty"`
	Modifier         uint64           `json:"modifier"`
	Weight           uint64           `json:"weight"`
	Status           SubmissionStatus `json:"status"`
	VerificationFlag string           `json:"verification_flag,omitempty"`
}
