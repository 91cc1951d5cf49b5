package policy

import (
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
)

// Document is a compiled policy file.
type Document struct {
	Policy     *access.Policy
	Identities []access.Identity

	// Resolver serves Identities. It is empty when the file lists none.
	Resolver *access.MemoryResolver
}

// LoadFile reads and compiles a policy file.
func LoadFile(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}
	return CompileBytes(path, src)
}

// CompileBytes compiles CUE source. filename is used in error positions.
func CompileBytes(filename string, src []byte) (*Document, error) {
	ctx := cuecontext.New()
	return Compile(ctx.CompileBytes(src, cue.Filename(filename)))
}

// Compile converts a CUE value into a Document.
func Compile(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		switch label := iter.Label(); label {
		case "tiers", "identities":
		default:
			return nil, &CompileError{
				Field:   label,
				Message: "unknown field (expected tiers or identities)",
				Pos:     iter.Value().Pos(),
			}
		}
	}

	doc := &Document{Identities: []access.Identity{}}

	tiersVal := v.LookupPath(cue.ParsePath("tiers"))
	if tiersVal.Exists() {
		doc.Policy, err = compileTiers(tiersVal)
		if err != nil {
			return nil, err
		}
	} else {
		doc.Policy = access.DefaultPolicy()
	}

	idsVal := v.LookupPath(cue.ParsePath("identities"))
	if idsVal.Exists() {
		doc.Identities, err = compileIdentities(idsVal)
		if err != nil {
			return nil, err
		}
	}

	doc.Resolver, err = access.NewMemoryResolver(doc.Identities...)
	if err != nil {
		return nil, &CompileError{Field: "identities", Message: err.Error(), Pos: idsVal.Pos()}
	}
	return doc, nil
}

func compileTiers(v cue.Value) (*access.Policy, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: "tiers", Message: "must be a struct keyed by tier", Pos: v.Pos()}
	}

	rules := make(map[ir.AccessTier]access.Rule)
	for iter.Next() {
		label := iter.Label()
		field := "tiers." + label

		tier, err := ir.ParseTier(label)
		if err != nil {
			return nil, &CompileError{Field: field, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		if tier == ir.TierOverride {
			return nil, &CompileError{
				Field:   field,
				Message: "OVERRIDE is always allow-all and cannot be configured",
				Pos:     iter.Value().Pos(),
			}
		}
		if _, dup := rules[tier]; dup {
			return nil, &CompileError{Field: field, Message: fmt.Sprintf("tier %s configured twice", tier), Pos: iter.Value().Pos()}
		}

		rule, err := compileRule(field, iter.Value())
		if err != nil {
			return nil, err
		}
		rules[tier] = rule
	}

	p, err := access.NewPolicy(rules)
	if err != nil {
		return nil, &CompileError{Field: "tiers", Message: err.Error(), Pos: v.Pos()}
	}
	return p, nil
}

// compileRule reads a tier body. Exactly one of reserved or prefixes is set.
func compileRule(field string, v cue.Value) (access.Rule, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a struct with reserved or prefixes", Pos: v.Pos()}
	}

	var rule access.Rule
	for iter.Next() {
		label := iter.Label()
		if rule != nil {
			return nil, &CompileError{Field: field, Message: "reserved and prefixes are mutually exclusive", Pos: iter.Value().Pos()}
		}
		switch label {
		case "reserved":
			list, err := stringList(field+".reserved", iter.Value())
			if err != nil {
				return nil, err
			}
			rule = access.DenyReserved{Reserved: list}
		case "prefixes":
			list, err := stringList(field+".prefixes", iter.Value())
			if err != nil {
				return nil, err
			}
			rule = access.AllowPrefixes{Prefixes: list}
		default:
			return nil, &CompileError{Field: field + "." + label, Message: "unknown field (expected reserved or prefixes)", Pos: iter.Value().Pos()}
		}
	}
	if rule == nil {
		return nil, &CompileError{Field: field, Message: "one of reserved or prefixes is required", Pos: v.Pos()}
	}
	return rule, nil
}

func compileIdentities(v cue.Value) ([]access.Identity, error) {
	list, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: "identities", Message: "must be a list", Pos: v.Pos()}
	}

	ids := []access.Identity{}
	for i := 0; list.Next(); i++ {
		id, err := compileIdentity(fmt.Sprintf("identities[%d]", i), list.Value())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func compileIdentity(field string, v cue.Value) (access.Identity, error) {
	var id access.Identity

	iter, err := v.Fields()
	if err != nil {
		return id, &CompileError{Field: field, Message: "must be a struct", Pos: v.Pos()}
	}
	hashSet := false
	for iter.Next() {
		label := iter.Label()
		fv := iter.Value()
		switch label {
		case "identifier", "prefix", "tier":
			s, err := fv.String()
			if err != nil {
				return id, &CompileError{Field: field + "." + label, Message: "must be a string", Pos: fv.Pos()}
			}
			switch label {
			case "identifier":
				id.Identifier = s
			case "prefix":
				id.Prefix = s
			case "tier":
				id.Tier = parseIdentityTier(s)
			}
		case "integrity_hash":
			id.IntegrityHash, err = parseHash(fv)
			if err != nil {
				return id, &CompileError{Field: field + ".integrity_hash", Message: err.Error(), Pos: fv.Pos()}
			}
			hashSet = true
		default:
			return id, &CompileError{Field: field + "." + label, Message: "unknown field", Pos: fv.Pos()}
		}
	}

	if !hashSet {
		return id, &CompileError{Field: field + ".integrity_hash", Message: "integrity_hash is required", Pos: v.Pos()}
	}
	if err := id.Validate(); err != nil {
		return id, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos()}
	}
	return id, nil
}

// parseIdentityTier normalizes legacy names. Unrecognized tiers are kept
// verbatim; they resolve and are then denied by the policy.
func parseIdentityTier(s string) ir.AccessTier {
	if tier, err := ir.ParseTier(s); err == nil {
		return tier
	}
	return ir.AccessTier(s)
}

// parseHash accepts an integer or a string in Go integer syntax ("0xFACEBEEF").
func parseHash(v cue.Value) (uint64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Uint64()
		if err != nil {
			return 0, fmt.Errorf("must fit in an unsigned 64-bit integer")
		}
		return n, nil
	case cue.StringKind:
		s, _ := v.String()
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hash %q: must be an unsigned 64-bit integer", s)
		}
		return n, nil
	}
	return 0, fmt.Errorf("must be an integer or a hex string")
}

func stringList(field string, v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: v.Pos()}
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: field, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}
