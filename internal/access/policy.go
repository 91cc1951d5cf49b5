package access

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/accord/internal/ir"
)

// Default allow-lists. Matching is case-sensitive: "Read" and "Write" are
// title-case verbs, "ACQUISITION" is an upper-case token, and "read" or
// "Acquisition" do not match.
var (
	// ReservedTopTierIntents are denied to ADMIN and permitted only to OVERRIDE.
	ReservedTopTierIntents = []string{"GOLD_BAR_VOTE_II", "OVERRIDE"}

	// ReadWritePrefixes is the READ_WRITE allow-list.
	ReadWritePrefixes = []string{"Read", "Write", "ACQUISITION"}

	// ReadOnlyPrefixes is the AUDIT_ONLY and DEFAULT allow-list.
	ReadOnlyPrefixes = []string{"Read", "Monitor"}
)

// Rule decides whether a single tier may perform an intent. When the
// intent is denied, reason explains which check failed.
type Rule interface {
	Permits(intent string) (ok bool, reason string)
}

// AllowAll permits every intent.
type AllowAll struct{}

func (AllowAll) Permits(string) (bool, string) { return true, "" }

// DenyReserved permits every intent except an exact-match reserved set.
type DenyReserved struct {
	Reserved []string
}

func (r DenyReserved) Permits(intent string) (bool, string) {
	if slices.Contains(r.Reserved, intent) {
		return false, fmt.Sprintf("intent %q is reserved for %s", intent, ir.TierOverride)
	}
	return true, ""
}

// AllowPrefixes permits an intent only when it starts with one of Prefixes.
// An empty list denies everything.
type AllowPrefixes struct {
	Prefixes []string
}

func (r AllowPrefixes) Permits(intent string) (bool, string) {
	for _, p := range r.Prefixes {
		if strings.HasPrefix(intent, p) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("intent %q matches no allowed prefix %v", intent, r.Prefixes)
}

// Policy maps tiers to rules.
//
// Thread-safety: immutable after construction, safe for concurrent use.
type Policy struct {
	rules map[ir.AccessTier]Rule
}

// NewPolicy validates rules and returns a policy. OVERRIDE always uses
// AllowAll; supplying any other rule for it is an error. Tiers without a
// rule deny every intent.
func NewPolicy(rules map[ir.AccessTier]Rule) (*Policy, error) {
	p := &Policy{rules: map[ir.AccessTier]Rule{ir.TierOverride: AllowAll{}}}

	for tier, rule := range rules {
		if !tier.Known() {
			return nil, fmt.Errorf("policy: unknown tier %q", tier)
		}
		if rule == nil {
			return nil, fmt.Errorf("policy: tier %s has a nil rule", tier)
		}
		if tier == ir.TierOverride {
			if _, ok := rule.(AllowAll); !ok {
				return nil, fmt.Errorf("policy: tier %s is always allow-all and cannot be restricted", tier)
			}
			continue
		}
		if err := validateRule(tier, rule); err != nil {
			return nil, err
		}
		p.rules[tier] = rule
	}
	return p, nil
}

func validateRule(tier ir.AccessTier, rule Rule) error {
	switch r := rule.(type) {
	case AllowPrefixes:
		for _, prefix := range r.Prefixes {
			if prefix == "" {
				return fmt.Errorf("policy: tier %s has an empty prefix, which would match every intent", tier)
			}
		}
	case DenyReserved:
		for _, intent := range r.Reserved {
			if intent == "" {
				return fmt.Errorf("policy: tier %s has an empty reserved intent", tier)
			}
		}
	}
	return nil
}

// DefaultPolicy returns the built-in tier policy.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(map[ir.AccessTier]Rule{
		ir.TierAdmin:     DenyReserved{Reserved: ReservedTopTierIntents},
		ir.TierReadWrite: AllowPrefixes{Prefixes: ReadWritePrefixes},
		ir.TierAuditOnly: AllowPrefixes{Prefixes: ReadOnlyPrefixes},
		ir.TierDefault:   AllowPrefixes{Prefixes: ReadOnlyPrefixes},
	})
	if err != nil {
		panic(err)
	}
	return p
}

// Permits evaluates the tier's rule. Unknown tiers and tiers without a
// rule are denied.
func (p *Policy) Permits(tier ir.AccessTier, intent string) (bool, string) {
	rule, ok := p.rules[tier]
	if !ok {
		return false, fmt.Sprintf("no rule for tier %q", tier)
	}
	return rule.Permits(intent)
}

// TierRule is a printable view of one tier's rule.
type TierRule struct {
	Tier    ir.AccessTier `json:"tier"`
	Mode    string        `json:"mode"` // "allow_all" | "deny_reserved" | "allow_prefixes" | "deny_all"
	Intents []string      `json:"intents,omitempty"`
}

// Describe lists every known tier's rule, most privileged first.
func (p *Policy) Describe() []TierRule {
	var out []TierRule
	for _, tier := range ir.Tiers() {
		tr := TierRule{Tier: tier, Mode: "deny_all"}
		switch r := p.rules[tier].(type) {
		case AllowAll:
			tr.Mode = "allow_all"
		case DenyReserved:
			tr.Mode = "deny_reserved"
			tr.Intents = slices.Clone(r.Reserved)
		case AllowPrefixes:
			tr.Mode = "allow_prefixes"
			tr.Intents = slices.Clone(r.Prefixes)
		case nil:
		default:
			tr.Mode = fmt.Sprintf("%T", r)
		}
		out = append(out, tr)
	}
	return out
}
