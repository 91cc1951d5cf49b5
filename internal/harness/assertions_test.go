package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestCheckExpect(t *testing.T) {
	accepted := TraceEvent{
		Type:     EventSubmission,
		Modifier: 2,
		Weight:   5000,
		Status:   "published",
	}
	rejected := TraceEvent{Type: EventRejection, Code: "UNAUTHORIZED"}

	tests := []struct {
		name      string
		want      Expect
		got       TraceEvent
		wantField string
	}{
		{name: "accepted matches", want: Expect{Outcome: OutcomeAccepted, Status: "published", Modifier: u64(2), Weight: u64(5000), MinWeight: u64(5000)}, got: accepted},
		{name: "rejected matches", want: Expect{Outcome: OutcomeRejected, Code: "UNAUTHORIZED"}, got: rejected},
		{name: "code is case-insensitive", want: Expect{Outcome: OutcomeRejected, Code: "unauthorized"}, got: rejected},
		{name: "rejected without code", want: Expect{Outcome: OutcomeRejected}, got: rejected},
		{name: "outcome mismatch", want: Expect{Outcome: OutcomeAccepted}, got: rejected, wantField: "outcome"},
		{name: "code mismatch", want: Expect{Outcome: OutcomeRejected, Code: "INTENT_FORBIDDEN"}, got: rejected, wantField: "code"},
		{name: "status mismatch", want: Expect{Outcome: OutcomeAccepted, Status: "dropped"}, got: accepted, wantField: "status"},
		{name: "modifier mismatch", want: Expect{Outcome: OutcomeAccepted, Modifier: u64(3)}, got: accepted, wantField: "modifier"},
		{name: "weight mismatch", want: Expect{Outcome: OutcomeAccepted, Weight: u64(4999)}, got: accepted, wantField: "weight"},
		{name: "below min weight", want: Expect{Outcome: OutcomeAccepted, MinWeight: u64(5001)}, got: accepted, wantField: "min_weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aerr := checkExpect(3, &tt.want, tt.got)
			if tt.wantField == "" {
				assert.Nil(t, aerr)
				return
			}
			require.NotNil(t, aerr)
			assert.Equal(t, 3, aerr.Step)
			assert.Equal(t, tt.wantField, aerr.Field)
		})
	}
}

func TestAssertionError_Message(t *testing.T) {
	aerr := checkExpect(1, &Expect{Outcome: OutcomeAccepted}, TraceEvent{Type: EventRejection, Code: "UNAUTHORIZED"})
	require.NotNil(t, aerr)
	assert.Equal(t, "steps[1]: outcome: expected accepted, got rejected (UNAUTHORIZED)", aerr.Error())
}
