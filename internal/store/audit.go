package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/accord/internal/audit"
	"github.com/roach88/accord/internal/ir"
)

// AuditSink appends audit events to the decisions and modifier_events
// tables. Sinks cannot fail the caller, so write errors are logged.
type AuditSink struct {
	store  *Store
	logger *slog.Logger
}

// NewAuditSink returns a sink writing to s. A nil logger uses slog.Default().
func NewAuditSink(s *Store, logger *slog.Logger) *AuditSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditSink{store: s, logger: logger}
}

// RecordDecision implements audit.Sink. The write survives cancellation
// of ctx so a denied request is still recorded.
func (a *AuditSink) RecordDecision(ctx context.Context, ev audit.DecisionEvent) {
	_, err := a.store.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO decisions (identifier, intent, tier, granted, code, reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.Identifier, ev.Intent, string(ev.Tier), ev.Granted, ev.Code, ev.Reason)
	if err != nil {
		a.logger.ErrorContext(ctx, "audit write failed", "table", "decisions", "identifier", ev.Identifier, "error", err)
	}
}

// RecordModifier implements audit.Sink.
func (a *AuditSink) RecordModifier(ctx context.Context, ev audit.ModifierEvent) {
	var raw any
	if ev.HasRaw {
		raw = int64(ev.RawBits)
	}
	_, err := a.store.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO modifier_events (record_index, raw, level, multiplier, message)
		VALUES (?, ?, ?, ?, ?)
	`, ev.Index, raw, string(ev.Level), toInt64(ev.Multiplier), ev.Message)
	if err != nil {
		a.logger.ErrorContext(ctx, "audit write failed", "table", "modifier_events", "index", ev.Index, "error", err)
	}
}

// ReadDecisions returns recorded decisions in append order.
func (s *Store) ReadDecisions(ctx context.Context) ([]audit.DecisionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, intent, tier, granted, code, reason
		FROM decisions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	events := []audit.DecisionEvent{}
	for rows.Next() {
		var (
			ev   audit.DecisionEvent
			tier string
		)
		if err := rows.Scan(&ev.Identifier, &ev.Intent, &tier, &ev.Granted, &ev.Code, &ev.Reason); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		ev.Tier = ir.AccessTier(tier)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return events, nil
}

// ReadModifierEvents returns recorded modifier events in append order.
func (s *Store) ReadModifierEvents(ctx context.Context) ([]audit.ModifierEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT record_index, raw, level, multiplier, message
		FROM modifier_events
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query modifier events: %w", err)
	}
	defer rows.Close()

	events := []audit.ModifierEvent{}
	for rows.Next() {
		var (
			ev         audit.ModifierEvent
			raw        *int64
			level      string
			multiplier int64
		)
		if err := rows.Scan(&ev.Index, &raw, &level, &multiplier, &ev.Message); err != nil {
			return nil, fmt.Errorf("scan modifier event: %w", err)
		}
		if raw != nil {
			ev.RawBits = uint32(*raw)
			ev.HasRaw = true
		}
		ev.Level = audit.Level(level)
		ev.Multiplier = fromInt64(multiplier)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modifier events: %w", err)
	}
	return events, nil
}
