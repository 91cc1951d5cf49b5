package policy

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a policy error with its source position, when known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError reports the first CUE error at its source position, noting
// how many more the evaluator found.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) == 0 {
		return err
	}
	msg := first.Error()
	if extra := len(errs) - 1; extra > 0 {
		msg = fmt.Sprintf("%s (and %d more)", msg, extra)
	}
	return &CompileError{Field: "cue", Message: msg, Pos: positions[0]}
}
