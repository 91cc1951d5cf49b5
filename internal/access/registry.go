package access

import (
	"context"

	"github.com/roach88/accord/internal/audit"
	"github.com/roach88/accord/internal/ir"
)

// Registry resolves senders and enforces the tier policy.
//
// Thread-safety: Registry holds no mutable state; concurrent Authorize
// calls are independent as long as the resolver and sink are safe for
// concurrent use.
type Registry struct {
	resolver Resolver
	policy   *Policy
	sink     audit.Sink
}

// Option configures a Registry.
type Option func(*Registry)

// WithSink sets the observability sink that receives every decision.
func WithSink(s audit.Sink) Option {
	return func(r *Registry) {
		if s != nil {
			r.sink = s
		}
	}
}

// NewRegistry creates a registry. A nil policy uses DefaultPolicy; a nil
// resolver resolves nothing.
func NewRegistry(resolver Resolver, policy *Policy, opts ...Option) *Registry {
	if resolver == nil {
		resolver = ChainResolver(nil)
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	r := &Registry{
		resolver: resolver,
		policy:   policy,
		sink:     audit.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up a credential without making a decision.
func (r *Registry) Resolve(ctx context.Context, identifier string) (ir.Credential, bool, error) {
	return r.resolver.Resolve(ctx, identifier)
}

// Policy returns the registry's tier policy.
func (r *Registry) Policy() *Policy {
	return r.policy
}

// Authorize decides whether tx.Sender may perform tx.Intent. It returns nil
// when permitted and an *AccessError otherwise.
func (r *Registry) Authorize(ctx context.Context, tx ir.Transaction) error {
	_, err := r.Check(ctx, tx)
	return err
}

// Check is Authorize that also returns the resolved credential. The
// credential is zero when the sender did not resolve.
func (r *Registry) Check(ctx context.Context, tx ir.Transaction) (ir.Credential, error) {
	cred, ok, err := r.resolver.Resolve(ctx, tx.Sender)
	if err != nil {
		ae := newUnauthorized(tx, "identity resolution failed", err)
		r.report(ctx, tx, ir.Credential{}, ae)
		return ir.Credential{}, ae
	}
	if !ok {
		ae := newUnauthorized(tx, "identifier not recognized", nil)
		r.report(ctx, tx, ir.Credential{}, ae)
		return ir.Credential{}, ae
	}

	if permitted, reason := r.policy.Permits(cred.Tier, tx.Intent); !permitted {
		ae := newIntentForbidden(tx, cred.Tier, reason)
		r.report(ctx, tx, cred, ae)
		return cred, ae
	}

	r.report(ctx, tx, cred, nil)
	return cred, nil
}

func (r *Registry) report(ctx context.Context, tx ir.Transaction, cred ir.Credential, ae *AccessError) {
	ev := audit.DecisionEvent{
		Identifier: tx.Sender,
		Intent:     tx.Intent,
		Tier:       cred.Tier,
		Granted:    ae == nil,
	}
	if ae != nil {
		ev.Code = string(ae.Code)
		ev.Reason = ae.Reason
	}
	r.sink.RecordDecision(ctx, ev)
}
