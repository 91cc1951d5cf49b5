package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/audit"
	"github.com/roach88/accord/internal/engine"
	"github.com/roach88/accord/internal/modifier"
	"github.com/roach88/accord/internal/policy"
	"github.com/roach88/accord/internal/store"
	"github.com/roach88/accord/internal/testutil"
	"github.com/roach88/accord/internal/weight"
)

// traceSink turns audit events into trace events for the current step.
type traceSink struct {
	mu     sync.Mutex
	step   int
	result *Result
}

func (s *traceSink) setStep(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = i
}

func (s *traceSink) add(ev TraceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.Step = s.step
	s.result.Trace = append(s.result.Trace, ev)
}

func (s *traceSink) RecordDecision(_ context.Context, ev audit.DecisionEvent) {
	s.add(TraceEvent{
		Type:       EventDecision,
		Identifier: ev.Identifier,
		Intent:     ev.Intent,
		Tier:       string(ev.Tier),
		Granted:    ev.Granted,
		Code:       ev.Code,
	})
}

func (s *traceSink) RecordModifier(_ context.Context, ev audit.ModifierEvent) {
	s.add(TraceEvent{
		Type:       EventModifier,
		Index:      ev.Index,
		Level:      string(ev.Level),
		RawBits:    ev.RawBits,
		HasRaw:     ev.HasRaw,
		Multiplier: ev.Multiplier,
	})
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Compile the policy file, if any
//  2. Seed the identity backend
//  3. Wire the engine with deterministic clock and IDs
//  4. Submit each step, tracing and checking expectations
//  5. Summarize the ledger
//
// Expectation failures are reported in Result; the error return is for
// setup failures only.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var pol *access.Policy
	resolvers := access.ChainResolver{}
	seedDefaults := len(scenario.Identities) == 0
	if scenario.Policy != "" {
		doc, err := policy.LoadFile(scenario.Policy)
		if err != nil {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
		pol = doc.Policy
		if len(doc.Identities) > 0 {
			resolvers = append(resolvers, doc.Resolver)
			seedDefaults = false
		}
	}

	identities := make([]access.Identity, 0, len(scenario.Identities))
	for _, spec := range scenario.Identities {
		id, err := spec.Identity()
		if err != nil {
			return nil, fmt.Errorf("invalid identity: %w", err)
		}
		identities = append(identities, id)
	}
	if seedDefaults {
		identities = access.DefaultIdentities()
	}
	for _, id := range identities {
		if err := st.PutIdentity(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to seed identity: %w", err)
		}
	}
	resolvers = append(resolvers, store.NewIdentityResolver(st))

	result := NewResult()
	trace := &traceSink{result: result}
	sink := audit.Multi{store.NewAuditSink(st, logger), trace}

	integ, err := modifier.NewIntegrator(
		modifier.NewMemorySource(testutil.EncodeModifiers(scenario.Modifiers...)),
		modifier.DefaultParams(),
		modifier.WithSink(sink),
	)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithIntegrator(integ),
		engine.WithLedger(st),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(testutil.NewSequentialIDs("sub")),
	}
	if scenario.MinPublishWeight != nil {
		opts = append(opts, engine.WithMinPublishWeight(*scenario.MinPublishWeight))
	}
	eng, err := engine.New(
		access.NewRegistry(resolvers, pol, access.WithSink(sink)),
		weight.MustEngine(weight.DefaultParams()),
		opts...,
	)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		trace.setStep(i)
		sub, err := eng.Submit(ctx, engine.SubmitRequest{
			Transaction:   step.Transaction(),
			ModifierIndex: step.ModifierIndex,
			Modifier:      step.Modifier,
			Message:       step.Message,
		})

		var outcome TraceEvent
		if err != nil {
			code := ErrorCode(err)
			if code == "" {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			outcome = TraceEvent{Type: EventRejection, Code: code}
		} else {
			outcome = TraceEvent{
				Type:     EventSubmission,
				ID:       sub.ID,
				Seq:      sub.Seq,
				TxDigest: sub.TxDigest,
				Modifier: sub.Modifier,
				Weight:   sub.Weight,
				Status:   string(sub.Status),
			}
		}
		trace.add(outcome)

		if step.Expect != nil {
			if aerr := checkExpect(i, step.Expect, outcome); aerr != nil {
				result.AddError(aerr.Error())
			}
		}
	}

	report, err := st.VerifyLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ledger: %w", err)
	}
	if len(report.Corrupt) > 0 {
		result.AddError(fmt.Sprintf("ledger digest mismatch: %v", report.Corrupt))
	}
	result.Ledger = LedgerSummary{
		Total:     report.Total,
		Published: report.Published,
		Dropped:   report.Dropped,
	}
	return result, nil
}

// ErrorCode returns the rejection code carried by err, or "" for errors
// that are not submission rejections.
func ErrorCode(err error) string {
	var ae *access.AccessError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	var se *engine.SubmitError
	if errors.As(err, &se) && se.Code == engine.ErrCodeInvalidTransaction {
		return string(se.Code)
	}
	return ""
}
