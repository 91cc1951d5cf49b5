package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accord/internal/audit"
	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/testutil"
)

// adversarialIntents covers empty, reserved, case-variant, control and
// oversized intent strings.
var adversarialIntents = []string{
	"",
	"OVERRIDE",
	"GOLD_BAR_VOTE_II",
	"ReadLedger",
	"WriteLedger",
	"ACQUISITION",
	"Monitor",
	"read",
	"override",
	"Read\x00Write",
	"‮ReadLedger",
	"ＲｅａｄLedger",
	string(make([]byte, 4096)),
}

func newTestRegistry(sink audit.Sink) *Registry {
	return NewRegistry(MustMemoryResolver(DefaultIdentities()...), DefaultPolicy(), WithSink(sink))
}

func tx(sender, intent string) ir.Transaction {
	return ir.Transaction{Sender: sender, SignalMagnitude: 512, Intent: intent, Timestamp: 1700000000}
}

func TestAuthorize_UnresolvedAlwaysUnauthorized(t *testing.T) {
	r := newTestRegistry(nil)
	ctx := context.Background()

	for _, sender := range []string{"", "did:t9:nobody", "did:t0:protocol-overseer ", "did:t1:ROZEL-ROSEL-ADMIN"} {
		for _, intent := range adversarialIntents {
			err := r.Authorize(ctx, tx(sender, intent))
			require.Error(t, err)
			assert.True(t, IsUnauthorized(err), "sender %q intent %q", sender, intent)
			assert.False(t, IsIntentForbidden(err))
		}
	}
}

func TestAuthorize_OverrideAlwaysSucceeds(t *testing.T) {
	r := newTestRegistry(nil)

	for _, intent := range adversarialIntents {
		assert.NoError(t, r.Authorize(context.Background(), tx("did:t0:protocol-overseer", intent)), "intent %q", intent)
	}
}

func TestAuthorize_EveryOtherTierDeniesSomething(t *testing.T) {
	ctx := context.Background()
	denied := map[ir.AccessTier]string{
		ir.TierAdmin:     "OVERRIDE",
		ir.TierReadWrite: "OVERRIDE",
		ir.TierAuditOnly: "WriteLedger",
		ir.TierDefault:   "ACQUISITION",
	}

	for tier, intent := range denied {
		t.Run(string(tier), func(t *testing.T) {
			r := NewRegistry(MustMemoryResolver(Identity{Identifier: "did:test", Tier: tier}), nil)
			err := r.Authorize(ctx, tx("did:test", intent))
			require.Error(t, err)
			assert.True(t, IsIntentForbidden(err))

			var ae *AccessError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tier, ae.Tier)
		})
	}
}

func TestAuthorize_GoldBarVote(t *testing.T) {
	sink := testutil.NewRecordingSink()
	r := newTestRegistry(sink)
	ctx := context.Background()

	require.NoError(t, r.Authorize(ctx, tx("did:t0:protocol-overseer", "GOLD_BAR_VOTE_II")))

	err := r.Authorize(ctx, tx("did:t1:rozel-rosel-admin", "GOLD_BAR_VOTE_II"))
	require.Error(t, err)
	assert.True(t, IsIntentForbidden(err))
	assert.Contains(t, err.Error(), "INTENT_FORBIDDEN")
	assert.Contains(t, err.Error(), "identifier=did:t1:rozel-rosel-admin")

	decisions := sink.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, audit.DecisionEvent{
		Identifier: "did:t0:protocol-overseer",
		Intent:     "GOLD_BAR_VOTE_II",
		Tier:       ir.TierOverride,
		Granted:    true,
	}, decisions[0])
	assert.False(t, decisions[1].Granted)
	assert.Equal(t, ir.TierAdmin, decisions[1].Tier)
	assert.Equal(t, "INTENT_FORBIDDEN", decisions[1].Code)
	assert.Contains(t, decisions[1].Reason, "reserved")
}

func TestAuthorize_AuditOnlyPrefixIdentities(t *testing.T) {
	r := newTestRegistry(nil)
	ctx := context.Background()

	assert.NoError(t, r.Authorize(ctx, tx("did:t3:watcher", "ReadLedger")))
	assert.NoError(t, r.Authorize(ctx, tx("did:t3:watcher", "Monitor")))
	assert.True(t, IsIntentForbidden(r.Authorize(ctx, tx("did:t3:watcher", "ACQUISITION: T_X ACCESS OVERRIDE"))))
}

func TestAuthorize_UnknownTierDefaultDenies(t *testing.T) {
	r := NewRegistry(MustMemoryResolver(Identity{Identifier: "did:future", Tier: "T5_QUARANTINE"}), nil)

	for _, intent := range []string{"ReadLedger", "Monitor", "OVERRIDE"} {
		err := r.Authorize(context.Background(), tx("did:future", intent))
		assert.True(t, IsIntentForbidden(err), "intent %q", intent)
	}
}

func TestAuthorize_ResolverFailureFailsClosed(t *testing.T) {
	boom := errors.New("directory unavailable")
	sink := testutil.NewRecordingSink()
	r := NewRegistry(&stubResolver{err: boom}, nil, WithSink(sink))

	err := r.Authorize(context.Background(), tx("did:t0:protocol-overseer", "ReadLedger"))
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.ErrorIs(t, err, boom)

	require.Len(t, sink.Decisions(), 1)
	assert.Equal(t, "UNAUTHORIZED", sink.Decisions()[0].Code)
}

func TestRegistry_NilResolverResolvesNothing(t *testing.T) {
	r := NewRegistry(nil, nil)
	assert.True(t, IsUnauthorized(r.Authorize(context.Background(), tx("did:t0:protocol-overseer", "Read"))))
}

func TestCheck_ReturnsCredential(t *testing.T) {
	r := newTestRegistry(nil)

	cred, err := r.Check(context.Background(), tx("did:t1:rozel-rosel-admin", "DeployFabric"))
	require.NoError(t, err)
	assert.Equal(t, ir.TierAdmin, cred.Tier)
	assert.Equal(t, uint64(0xAFFECAFEBABEBABE), cred.IntegrityHash)

	cred, err = r.Check(context.Background(), tx("did:t1:rozel-rosel-admin", "OVERRIDE"))
	require.Error(t, err)
	assert.Equal(t, ir.TierAdmin, cred.Tier, "credential is returned even when the intent is denied")
}

func TestIsHelpers_NonAccessErrors(t *testing.T) {
	assert.False(t, IsUnauthorized(nil))
	assert.False(t, IsUnauthorized(errors.New("x")))
	assert.False(t, IsIntentForbidden(errors.New("x")))
}
