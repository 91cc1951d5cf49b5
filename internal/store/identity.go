package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
)

const (
	matchExact  = "exact"
	matchPrefix = "prefix"
)

// PutIdentity inserts an identity entry or replaces the tier and integrity
// hash of an existing one with the same identifier (or prefix).
func (s *Store) PutIdentity(ctx context.Context, id access.Identity) error {
	if err := id.Validate(); err != nil {
		return fmt.Errorf("put identity: %w", err)
	}

	kind, key := matchExact, id.Identifier
	if id.Prefix != "" {
		kind, key = matchPrefix, id.Prefix
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (identifier, match_kind, tier, integrity_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(match_kind, identifier) DO UPDATE SET
			tier = excluded.tier,
			integrity_hash = excluded.integrity_hash
	`, key, kind, string(id.Tier), toInt64(id.IntegrityHash))
	if err != nil {
		return fmt.Errorf("put identity: %w", err)
	}
	return nil
}

// ListIdentities returns every entry, exact entries first, each group in
// binary order. Returns an empty slice (not nil) when the table is empty.
func (s *Store) ListIdentities(ctx context.Context) ([]access.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, match_kind, tier, integrity_hash
		FROM identities
		ORDER BY match_kind ASC, identifier COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	ids := []access.Identity{}
	for rows.Next() {
		var (
			key, kind, tier string
			hash            int64
		)
		if err := rows.Scan(&key, &kind, &tier, &hash); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		id := access.Identity{Tier: ir.AccessTier(tier), IntegrityHash: fromInt64(hash)}
		if kind == matchPrefix {
			id.Prefix = key
		} else {
			id.Identifier = key
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return ids, nil
}

// IdentityResolver resolves identifiers against the identities table.
// Exact entries win over prefix entries; among prefixes the longest wins,
// matching access.MemoryResolver.
//
// Thread-safety: safe for concurrent use; the store serializes access.
type IdentityResolver struct {
	store *Store
}

// NewIdentityResolver returns a resolver backed by s.
func NewIdentityResolver(s *Store) *IdentityResolver {
	return &IdentityResolver{store: s}
}

// Resolve implements access.Resolver. A query failure is returned as err,
// which the registry turns into a fail-closed denial.
func (r *IdentityResolver) Resolve(ctx context.Context, identifier string) (ir.Credential, bool, error) {
	var (
		tier string
		hash int64
	)

	err := r.store.db.QueryRowContext(ctx, `
		SELECT tier, integrity_hash FROM identities
		WHERE match_kind = 'exact' AND identifier = ?
	`, identifier).Scan(&tier, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.store.db.QueryRowContext(ctx, `
			SELECT tier, integrity_hash FROM identities
			WHERE match_kind = 'prefix' AND substr(?, 1, length(identifier)) = identifier
			ORDER BY length(identifier) DESC, identifier COLLATE BINARY ASC
			LIMIT 1
		`, identifier).Scan(&tier, &hash)
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ir.Credential{}, false, nil
	case err != nil:
		return ir.Credential{}, false, fmt.Errorf("resolve %q: %w", identifier, err)
	}

	return ir.Credential{
		Identifier:    identifier,
		Tier:          ir.AccessTier(tier),
		IntegrityHash: fromInt64(hash),
	}, true, nil
}
