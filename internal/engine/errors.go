package engine

import (
	"errors"
	"fmt"
)

// SubmitError represents a submission rejected or lost by the engine.
// Authorization failures are not SubmitErrors; they surface as
// *access.AccessError unchanged.
type SubmitError struct {
	// Code identifies the error category.
	Code SubmitErrorCode

	// Message is a human-readable description.
	Message string

	// Sender and Intent identify the transaction.
	Sender string
	Intent string

	// Err is the underlying cause, if any.
	Err error
}

// SubmitErrorCode categorizes submission errors.
type SubmitErrorCode string

const (
	// ErrCodeInvalidTransaction indicates a malformed request.
	ErrCodeInvalidTransaction SubmitErrorCode = "INVALID_TRANSACTION"

	// ErrCodeLedgerWrite indicates the submission was weighed but not recorded.
	ErrCodeLedgerWrite SubmitErrorCode = "LEDGER_WRITE_FAILED"
)

// Error implements the error interface.
func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Sender != "" {
		msg = fmt.Sprintf("%s (sender=%s, intent=%s)", msg, e.Sender, e.Intent)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsInvalidTransaction reports whether err is a rejected malformed request.
// Uses errors.As to handle wrapped errors.
func IsInvalidTransaction(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidTransaction
	}
	return false
}

// IsLedgerError reports whether err is a failed ledger append.
func IsLedgerError(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Code == ErrCodeLedgerWrite
	}
	return false
}

func newInvalid(sender, intent, format string, args ...any) *SubmitError {
	return &SubmitError{
		Code:    ErrCodeInvalidTransaction,
		Message: fmt.Sprintf(format, args...),
		Sender:  sender,
		Intent:  intent,
	}
}
