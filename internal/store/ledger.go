package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/accord/internal/ir"
	"github.com/roach88/accord/internal/querysql"
)

// ErrDigestMismatch reports a ledger row whose stored digest does not match
// its content.
var ErrDigestMismatch = errors.New("digest mismatch")

// SubmissionFilter narrows ReadSubmissions. The zero value matches all rows.
type SubmissionFilter struct {
	Sender string
	Intent string
	Status ir.SubmissionStatus
	MinSeq int64 // rows with seq >= MinSeq; 0 disables
}

func (f SubmissionFilter) predicate() querysql.Predicate {
	var preds []querysql.Predicate
	if f.Sender != "" {
		preds = append(preds, querysql.Equals{Field: "sender", Value: f.Sender})
	}
	if f.Intent != "" {
		preds = append(preds, querysql.Equals{Field: "intent", Value: f.Intent})
	}
	if f.Status != "" {
		preds = append(preds, querysql.Equals{Field: "status", Value: string(f.Status)})
	}
	if f.MinSeq > 0 {
		preds = append(preds, querysql.AtLeast{Field: "seq", Value: f.MinSeq})
	}
	return querysql.Where(preds...)
}

// WriteSubmission appends a submission to the ledger.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - rewriting the same ID
// is silently ignored.
//
// TxDigest must match the transaction; a record digest covering every
// field except the ID is stored alongside the row and checked on read.
func (s *Store) WriteSubmission(ctx context.Context, sub ir.Submission) error {
	txDigest, err := ir.TransactionDigest(sub.Transaction)
	if err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	if sub.TxDigest != txDigest {
		return fmt.Errorf("write submission %s: tx_digest: %w", sub.ID, ErrDigestMismatch)
	}
	recordDigest, err := ir.SubmissionDigest(sub)
	if err != nil {
		return fmt.Errorf("write submission: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions
		(id, seq, tx_digest, sender, intent, magnitude, timestamp_epoch, message,
		 modifier, weight, status, verification_flag, record_digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sub.ID,
		sub.Seq,
		sub.TxDigest,
		sub.Transaction.Sender,
		sub.Transaction.Intent,
		sub.Transaction.SignalMagnitude,
		toInt64(sub.Transaction.Timestamp),
		sub.Message,
		toInt64(sub.Modifier),
		toInt64(sub.Weight),
		string(sub.Status),
		sub.VerificationFlag,
		recordDigest,
	)
	if err != nil {
		return fmt.Errorf("write submission: %w", err)
	}
	return nil
}

var submissionColumnList = []string{
	"id", "seq", "tx_digest", "sender", "intent", "magnitude", "timestamp_epoch", "message",
	"modifier", "weight", "status", "verification_flag", "record_digest",
}

var submissionColumns = " " + strings.Join(submissionColumnList, ", ")

func submissionQuery(filter SubmissionFilter) (string, []any, error) {
	return querysql.Compile(querysql.Select{
		From:    "submissions",
		Columns: submissionColumnList,
		Filter:  filter.predicate(),
		OrderBy: []string{"seq"},
	})
}

// ReadSubmissions returns ledger rows matching filter.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
// A row failing digest verification aborts the read with ErrDigestMismatch.
//
// Returns an empty slice (not nil) if no records match.
func (s *Store) ReadSubmissions(ctx context.Context, filter SubmissionFilter) ([]ir.Submission, error) {
	query, params, err := submissionQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []ir.Submission{}
	for rows.Next() {
		sub, recordDigest, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		if err := verifySubmission(sub, recordDigest); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

// ReadSubmission retrieves a single submission by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSubmission(ctx context.Context, id string) (ir.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, recordDigest, err := scanSubmission(row)
	if err != nil {
		return ir.Submission{}, err
	}
	if err := verifySubmission(sub, recordDigest); err != nil {
		return ir.Submission{}, err
	}
	return sub, nil
}

// LedgerReport summarizes a full ledger scan.
type LedgerReport struct {
	Total     int
	Published int
	Dropped   int
	LastSeq   int64
	Corrupt   []string // IDs failing digest verification, in ledger order
}

// VerifyLedger scans every submission, recomputing digests. Unlike
// ReadSubmissions it does not stop at the first bad row.
func (s *Store) VerifyLedger(ctx context.Context) (LedgerReport, error) {
	report := LedgerReport{Corrupt: []string{}}

	query, params, err := submissionQuery(SubmissionFilter{})
	if err != nil {
		return report, fmt.Errorf("verify ledger: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return report, fmt.Errorf("verify ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sub, recordDigest, err := scanSubmission(rows)
		if err != nil {
			return report, fmt.Errorf("verify ledger: %w", err)
		}
		report.Total++
		switch sub.Status {
		case ir.StatusPublished:
			report.Published++
		case ir.StatusDropped:
			report.Dropped++
		}
		if sub.Seq > report.LastSeq {
			report.LastSeq = sub.Seq
		}
		if verifySubmission(sub, recordDigest) != nil {
			report.Corrupt = append(report.Corrupt, sub.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("verify ledger: %w", err)
	}
	return report, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (ir.Submission, string, error) {
	var (
		sub                      ir.Submission
		status                   string
		timestamp, modifier, wgt int64
		recordDigest             string
	)
	err := row.Scan(
		&sub.ID,
		&sub.Seq,
		&sub.TxDigest,
		&sub.Transaction.Sender,
		&sub.Transaction.Intent,
		&sub.Transaction.SignalMagnitude,
		&timestamp,
		&sub.Message,
		&modifier,
		&wgt,
		&status,
		&sub.VerificationFlag,
		&recordDigest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sub, "", err
	}
	if err != nil {
		return sub, "", fmt.Errorf("scan submission: %w", err)
	}
	sub.Transaction.Timestamp = fromInt64(timestamp)
	sub.Modifier = fromInt64(modifier)
	sub.Weight = fromInt64(wgt)
	sub.Status = ir.SubmissionStatus(status)
	return sub, recordDigest, nil
}

func verifySubmission(sub ir.Submission, recordDigest string) error {
	txDigest, err := ir.TransactionDigest(sub.Transaction)
	if err != nil {
		return fmt.Errorf("verify submission %s: %w", sub.ID, err)
	}
	if txDigest != sub.TxDigest {
		return fmt.Errorf("submission %s: tx_digest: %w", sub.ID, ErrDigestMismatch)
	}
	want, err := ir.SubmissionDigest(sub)
	if err != nil {
		return fmt.Errorf("verify submission %s: %w", sub.ID, err)
	}
	if want != recordDigest {
		return fmt.Errorf("submission %s: record_digest: %w", sub.ID, ErrDigestMismatch)
	}
	return nil
}
