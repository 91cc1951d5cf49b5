// Package access implements the trust registry: it resolves a sender
// identifier to a credential and decides whether the credential's tier
// permits the declared intent.
//
// Each tier carries an independent Rule. The tier ranking in ir.AccessTier
// is never consulted for decisions; the only unconditional grant is the
// OVERRIDE tier, which always uses AllowAll. Every other path is
// default-deny: no resolution, no rule, or no matching allow entry
// rejects the request.
//
// Resolution goes through the Resolver interface so the static table used
// in tests can be replaced by a directory service (see store.IdentityResolver)
// without changing decisions.
package access
