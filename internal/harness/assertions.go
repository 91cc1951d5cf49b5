package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a step does not match its expect clause.
type AssertionError struct {
	Step     int
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("steps[%d]: %s: expected %s, got %s", e.Step, e.Field, e.Expected, e.Actual)
}

// checkExpect compares a step outcome (a submission or rejection event)
// with its expect clause. The first mismatch is returned.
func checkExpect(step int, want *Expect, got TraceEvent) *AssertionError {
	fail := func(field string, expected, actual any) *AssertionError {
		return &AssertionError{
			Step:     step,
			Field:    field,
			Expected: fmt.Sprint(expected),
			Actual:   fmt.Sprint(actual),
		}
	}

	actualOutcome := OutcomeAccepted
	if got.Type == EventRejection {
		actualOutcome = OutcomeRejected
	}
	if want.Outcome != actualOutcome {
		detail := actualOutcome
		if got.Code != "" {
			detail += " (" + got.Code + ")"
		}
		return fail("outcome", want.Outcome, detail)
	}

	if actualOutcome == OutcomeRejected {
		if want.Code != "" && !strings.EqualFold(want.Code, got.Code) {
			return fail("code", want.Code, got.Code)
		}
		return nil
	}

	if want.Status != "" && want.Status != got.Status {
		return fail("status", want.Status, got.Status)
	}
	if want.Modifier != nil && *want.Modifier != got.Modifier {
		return fail("modifier", *want.Modifier, got.Modifier)
	}
	if want.Weight != nil && *want.Weight != got.Weight {
		return fail("weight", *want.Weight, got.Weight)
	}
	if want.MinWeight != nil && got.Weight < *want.MinWeight {
		return fail("min_weight", fmt.Sprintf(">= %d", *want.MinWeight), got.Weight)
	}
	return nil
}
