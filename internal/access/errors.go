package access

import (
	"errors"
	"fmt"

	"github.com/roach88/accord/internal/ir"
)

// Code categorizes authorization failures.
type Code string

const (
	// CodeUnauthorized indicates the sender did not resolve to a credential.
	CodeUnauthorized Code = "UNAUTHORIZED"

	// CodeIntentForbidden indicates the credential's tier does not permit the intent.
	CodeIntentForbidden Code = "INTENT_FORBIDDEN"
)

// AccessError is returned for every rejected authorization. Both codes are
// terminal; retrying the same transaction yields the same decision.
type AccessError struct {
	Code       Code
	Identifier string
	Intent     string
	Tier       ir.AccessTier // empty for CodeUnauthorized
	Reason     string
	Err        error // resolver failure, if any
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	msg := fmt.Sprintf("%s: %s (identifier=%s, intent=%s)", e.Code, e.Reason, e.Identifier, e.Intent)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an unresolved-identifier rejection.
// Uses errors.As to handle wrapped errors.
func IsUnauthorized(err error) bool {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Code == CodeUnauthorized
	}
	return false
}

// IsIntentForbidden reports whether err is a tier policy rejection.
func IsIntentForbidden(err error) bool {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Code == CodeIntentForbidden
	}
	return false
}

func newUnauthorized(tx ir.Transaction, reason string, cause error) *AccessError {
	return &AccessError{
		Code:       CodeUnauthorized,
		Identifier: tx.Sender,
		Intent:     tx.Intent,
		Reason:     reason,
		Err:        cause,
	}
}

func newIntentForbidden(tx ir.Transaction, tier ir.AccessTier, reason string) *AccessError {
	return &AccessError{
		Code:       CodeIntentForbidden,
		Identifier: tx.Sender,
		Intent:     tx.Intent,
		Tier:       tier,
		Reason:     reason,
	}
}
