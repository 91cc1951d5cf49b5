package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/policy"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Tiers      []access.TierRule `json:"tiers,omitempty"`
	Identities int               `json:"identities"`
	Errors     []ValidationError `json:"errors,omitempty"`
}

// ValidationError is a policy error with its source location.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <policy.cue>",
		Short: "Validate a CUE policy file",
		Long: `Compile a CUE policy file and report the resulting tier rules and
identity table, or the first error with its position.

Exit codes:
  0 - Policy is valid
  1 - Policy is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if _, err := os.Stat(path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("policy file not found: %s", path), nil)
	}
	formatter.VerboseLog("Compiling %s", path)

	doc, err := policy.LoadFile(path)
	if err != nil {
		return outputValidationError(formatter, err)
	}

	result := ValidationResult{
		Valid:      true,
		Tiers:      doc.Policy.Describe(),
		Identities: len(doc.Identities),
	}
	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid\n", path)
		for _, tr := range result.Tiers {
			fmt.Fprintf(w, "  %-11s %-15s %v\n", tr.Tier, tr.Mode, tr.Intents)
		}
		fmt.Fprintf(w, "  %d identities\n", result.Identities)
	})
}

func outputValidationError(formatter *OutputFormatter, err error) error {
	verr := ValidationError{Field: "policy", Message: err.Error()}
	var ce *policy.CompileError
	if errors.As(err, &ce) {
		verr.Field = ce.Field
		verr.Message = ce.Message
		if ce.Pos.IsValid() {
			verr.File = ce.Pos.Filename()
			verr.Line = ce.Pos.Line()
			verr.Column = ce.Pos.Column()
		}
	}

	result := ValidationResult{Valid: false, Errors: []ValidationError{verr}}
	msg := "policy validation failed"
	if err := formatter.Denied(result, ErrCodePolicy, msg, func(w io.Writer) {
		fmt.Fprintf(w, "✗ %s\n", err)
	}); err != nil {
		return err
	}
	return WrapExitError(ExitFailure, msg, err)
}
