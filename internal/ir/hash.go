package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainTransaction = "accord/transaction/v1"
	DomainSubmission  = "accord/submission/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TransactionObject returns the canonical map form of a transaction.
func TransactionObject(tx Transaction) map[string]any {
	return map[string]any{
		"sender":           tx.Sender,
		"signal_magnitude": tx.SignalMagnitude,
		"intent":           tx.Intent,
		"timestamp":        tx.Timestamp,
	}
}

// TransactionDigest computes the content digest of a transaction.
// The digest is stable across processes and is recorded with every
// submission for audit.
//
// Strings are NFC-normalized and invalid UTF-8 becomes U+FFFD before
// hashing, so byte-distinct strings can share a digest. The engine only
// admits valid NFC text.
func TransactionDigest(tx Transaction) (string, error) {
	canonical, err := MarshalCanonical(TransactionObject(tx))
	if err != nil {
		return "", fmt.Errorf("TransactionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTransaction, canonical), nil
}

// SubmissionDigest computes the content digest of a ledger record.
// The ID is excluded: it is a generated token, not content.
func SubmissionDigest(s Submission) (string, error) {
	obj := map[string]any{
		"seq":         s.Seq,
		"tx_digest":   s.TxDigest,
		"transaction": TransactionObject(s.Transaction),
		"message":     s.Message,
		"modifier":    s.Modifier,
		"weight":      s.Weight,
		"status":      s.Status,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SubmissionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSubmission, canonical), nil
}

// MustTransactionDigest is like TransactionDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTransactionDigest(tx Transaction) string {
	d, err := TransactionDigest(tx)
	if err != nil {
		panic(err)
	}
	return d
}
