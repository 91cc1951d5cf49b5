package engine

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/modifier"
	"github.com/roach88/accord/internal/weight"
)

// Defaults.
const (
	// DefaultMinPublishWeight is the publish threshold. Lighter
	// submissions are recorded as dropped.
	DefaultMinPublishWeight uint64 = 1000

	// DefaultConcurrency bounds SubmitAll.
	DefaultConcurrency = 4
)

// Ledger records submissions. Implemented by *store.Store.
type Ledger interface {
	WriteSubmission(ctx context.Context, sub ir.Submission) error
}

// SubmitRequest is one transaction to process.
//
// The modifier comes from ModifierIndex when set (read from the external
// store), else from Modifier when set, else it is 0. Setting both is an
// error.
type SubmitRequest struct {
	Transaction   ir.Transaction
	ModifierIndex *int64
	Modifier      *uint64
	Message       string
}

// Engine wires authorization, modifier integration, weighting and the
// ledger.
//
// Thread-safety: Submit and SubmitAll are safe for concurrent use when the
// registry's resolver and sink, and the ledger, are.
type Engine struct {
	registry   *access.Registry
	weigher    *weight.Engine
	integrator *modifier.Integrator
	ledger     Ledger
	clock      Sequencer
	ids        IDGenerator

	minPublishWeight uint64
	concurrency      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithIntegrator sets the external modifier integrator.
func WithIntegrator(i *modifier.Integrator) Option {
	return func(e *Engine) {
		if i != nil {
			e.integrator = i
		}
	}
}

// WithLedger sets where submissions are recorded. Without one, Submit
// still returns the submission but persists nothing.
func WithLedger(l Ledger) Option {
	return func(e *Engine) {
		e.ledger = l
	}
}

// WithClock sets the seq source. Use NewClockAt to resume a ledger.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithIDGenerator sets the submission ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithMinPublishWeight sets the publish threshold.
func WithMinPublishWeight(w uint64) Option {
	return func(e *Engine) {
		e.minPublishWeight = w
	}
}

// WithConcurrency bounds the number of in-flight submissions in SubmitAll.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an engine. registry and weigher are required. Without
// WithIntegrator, ModifierIndex requests degrade to a neutral modifier.
func New(registry *access.Registry, weigher *weight.Engine, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if weigher == nil {
		return nil, fmt.Errorf("engine: weight engine is required")
	}

	noSource, err := modifier.NewIntegrator(nil, modifier.DefaultParams())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		registry:         registry,
		weigher:          weigher,
		integrator:       noSource,
		clock:            NewClock(),
		ids:              UUIDv7Generator{},
		minPublishWeight: DefaultMinPublishWeight,
		concurrency:      DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Registry returns the engine's access registry.
func (e *Engine) Registry() *access.Registry {
	return e.registry
}

// Weigher returns the engine's weight engine.
func (e *Engine) Weigher() *weight.Engine {
	return e.weigher
}

// Submit runs one request through the pipeline.
//
// Errors:
//   - *SubmitError with ErrCodeInvalidTransaction for a malformed request
//   - *access.AccessError when the sender is unknown or the intent is forbidden
//   - *SubmitError with ErrCodeLedgerWrite when the append fails
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (ir.Submission, error) {
	tx := req.Transaction
	if err := validateRequest(req); err != nil {
		return ir.Submission{}, err
	}
	if err := ctx.Err(); err != nil {
		return ir.Submission{}, err
	}

	if err := e.registry.Authorize(ctx, tx); err != nil {
		slog.Debug("submission rejected",
			"sender", tx.Sender,
			"intent", tx.Intent,
			"error", err,
		)
		return ir.Submission{}, err
	}

	mod := e.resolveModifier(ctx, req)
	w := e.weigher.ComputeWeight(tx, mod)

	digest, err := ir.TransactionDigest(tx)
	if err != nil {
		return ir.Submission{}, newInvalid(tx.Sender, tx.Intent, "digest: %v", err)
	}

	sub := ir.Submission{
		ID:          e.ids.Generate(),
		Seq:         e.clock.Next(),
		TxDigest:    digest,
		Transaction: tx,
		Message:     req.Message,
		Modifier:    mod,
		Weight:      w,
		Status:      ir.StatusDropped,
	}
	if w >= e.minPublishWeight {
		sub.Status = ir.StatusPublished
		sub.VerificationFlag = ir.VerificationFlag
	}

	slog.Debug("submission weighed",
		"id", sub.ID,
		"seq", sub.Seq,
		"modifier", sub.Modifier,
		"weight", sub.Weight,
	)

	if e.ledger != nil {
		if err := e.ledger.WriteSubmission(ctx, sub); err != nil {
			slog.Error("ledger write failed",
				"id", sub.ID,
				"seq", sub.Seq,
				"error", err,
			)
			return ir.Submission{}, &SubmitError{
				Code:    ErrCodeLedgerWrite,
				Message: fmt.Sprintf("append submission %s", sub.ID),
				Sender:  tx.Sender,
				Intent:  tx.Intent,
				Err:     err,
			}
		}
	}

	slog.Info("submission recorded",
		"id", sub.ID,
		"seq", sub.Seq,
		"sender", tx.Sender,
		"intent", tx.Intent,
		"status", string(sub.Status),
	)
	return sub, nil
}

func validateRequest(req SubmitRequest) error {
	tx := req.Transaction
	switch {
	case tx.Sender == "":
		return newInvalid(tx.Sender, tx.Intent, "sender is required")
	case tx.SignalMagnitude > ir.MaxSignalMagnitude:
		return newInvalid(tx.Sender, tx.Intent, "signal magnitude %d exceeds %d", tx.SignalMagnitude, ir.MaxSignalMagnitude)
	case req.ModifierIndex != nil && req.Modifier != nil:
		return newInvalid(tx.Sender, tx.Intent, "modifier index and modifier value are mutually exclusive")
	}
	for _, field := range []struct{ name, value string }{
		{"sender", tx.Sender},
		{"intent", tx.Intent},
		{"message", req.Message},
	} {
		if err := checkText(field.value); err != nil {
			return newInvalid(tx.Sender, tx.Intent, "%s %s", field.name, err)
		}
	}
	return nil
}

// checkText admits only valid UTF-8 already in NFC form. Canonical digests
// normalize strings, so any other input could share a digest with a
// different sender or intent.
func checkText(s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("is not valid UTF-8")
	}
	if !norm.NFC.IsNormalString(s) {
		return fmt.Errorf("is not in NFC form")
	}
	return nil
}

// Modifier integrates the external modifier record at index.
func (e *Engine) Modifier(ctx context.Context, index int64) uint64 {
	return e.integrator.Integrate(ctx, index)
}

func (e *Engine) resolveModifier(ctx context.Context, req SubmitRequest) uint64 {
	switch {
	case req.ModifierIndex != nil:
		return e.Modifier(ctx, *req.ModifierIndex)
	case req.Modifier != nil:
		return *req.Modifier
	}
	return 0
}

// BatchResult is the outcome of one request in SubmitAll.
type BatchResult struct {
	Submission ir.Submission
	Err        error
}

// SubmitAll submits reqs with bounded concurrency and returns one result
// per request, in input order. A failing request does not stop the batch.
// Seqs follow completion order, not input order.
//
// The returned error is non-nil only when ctx is cancelled; requests not yet
// started then report the context error.
func (e *Engine) SubmitAll(ctx context.Context, reqs []SubmitRequest) ([]BatchResult, error) {
	results := make([]BatchResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				results[j].Err = err
			}
			break
		}
		i, req := i, req // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			sub, err := e.Submit(ctx, req)
			results[i] = BatchResult{Submission: sub, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}
