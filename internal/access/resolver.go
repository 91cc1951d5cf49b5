package access

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/accord/internal/ir"
)

// Resolver maps an identifier to a credential.
//
// Resolve must be deterministic and side-effect free for a given backend
// state. It returns ok=false for unknown identifiers; err is reserved for
// backend failures.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (cred ir.Credential, ok bool, err error)
}

// Identity is one entry in a static identity table. Exactly one of
// Identifier (exact match) or Prefix (prefix match) is set.
type Identity struct {
	Identifier    string        `json:"identifier,omitempty"`
	Prefix        string        `json:"prefix,omitempty"`
	Tier          ir.AccessTier `json:"tier"`
	IntegrityHash uint64        `json:"integrity_hash"`
}

// Validate checks the entry shape. Unknown tiers are allowed here; they
// resolve and are then denied by the policy.
func (id Identity) Validate() error {
	switch {
	case id.Identifier == "" && id.Prefix == "":
		return fmt.Errorf("identity: one of identifier or prefix is required")
	case id.Identifier != "" && id.Prefix != "":
		return fmt.Errorf("identity %q: identifier and prefix are mutually exclusive", id.Identifier)
	case id.Tier == "":
		return fmt.Errorf("identity %q: tier is required", id.key())
	}
	return nil
}

func (id Identity) key() string {
	if id.Prefix != "" {
		return id.Prefix + "*"
	}
	return id.Identifier
}

func (id Identity) credential(identifier string) ir.Credential {
	return ir.Credential{
		Identifier:    identifier,
		Tier:          id.Tier,
		IntegrityHash: id.IntegrityHash,
	}
}

// DefaultIdentities returns the built-in identity table.
func DefaultIdentities() []Identity {
	return []Identity{
		{Identifier: "did:t0:protocol-overseer", Tier: ir.TierOverride, IntegrityHash: 0xDEADBEEF_C0DE_C0DE},
		{Identifier: "did:t1:rozel-rosel-admin", Tier: ir.TierAdmin, IntegrityHash: 0xAFFE_CAFE_BABE_BABE},
		{Prefix: "did:t3:", Tier: ir.TierAuditOnly, IntegrityHash: 0xFACE_BEEF},
	}
}

// MemoryResolver resolves against an in-memory table. Exact entries win
// over prefix entries; among prefixes the longest match wins.
//
// Thread-safety: immutable after construction, safe for concurrent use.
type MemoryResolver struct {
	exact    map[string]Identity
	prefixes []Identity // longest first, then lexical
}

// NewMemoryResolver builds a resolver from entries. Duplicate keys are rejected.
func NewMemoryResolver(entries ...Identity) (*MemoryResolver, error) {
	r := &MemoryResolver{exact: make(map[string]Identity)}
	seen := make(map[string]bool)

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if seen[e.key()] {
			return nil, fmt.Errorf("identity %q: duplicate entry", e.key())
		}
		seen[e.key()] = true

		if e.Prefix != "" {
			r.prefixes = append(r.prefixes, e)
			continue
		}
		r.exact[e.Identifier] = e
	}

	sort.Slice(r.prefixes, func(i, j int) bool {
		a, b := r.prefixes[i].Prefix, r.prefixes[j].Prefix
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return r, nil
}

// MustMemoryResolver is like NewMemoryResolver but panics on error.
// Use only in tests or with known-valid tables.
func MustMemoryResolver(entries ...Identity) *MemoryResolver {
	r, err := NewMemoryResolver(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve implements Resolver.
func (r *MemoryResolver) Resolve(_ context.Context, identifier string) (ir.Credential, bool, error) {
	if e, ok := r.exact[identifier]; ok {
		return e.credential(identifier), true, nil
	}
	for _, e := range r.prefixes {
		if strings.HasPrefix(identifier, e.Prefix) {
			return e.credential(identifier), true, nil
		}
	}
	return ir.Credential{}, false, nil
}

// ChainResolver consults resolvers in order; the first hit wins.
// A backend error stops the chain so a failing primary never falls
// through to a more permissive secondary.
type ChainResolver []Resolver

// Resolve implements Resolver.
func (c ChainResolver) Resolve(ctx context.Context, identifier string) (ir.Credential, bool, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		cred, ok, err := r.Resolve(ctx, identifier)
		if err != nil {
			return ir.Credential{}, false, err
		}
		if ok {
			return cred, true, nil
		}
	}
	return ir.Credential{}, false, nil
}
