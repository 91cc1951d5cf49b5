package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/accord/internal/access"
	"github.com/roach88/accord/internal/ir"
)

// Scenario defines one end-to-end run of the submission pipeline.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy is an optional CUE policy file. Relative paths are resolved
	// against the scenario file's directory.
	Policy string `yaml:"policy,omitempty"`

	// Identities are seeded into the database identity backend.
	Identities []IdentitySpec `yaml:"identities,omitempty"`

	// Modifiers are the external modifier records, by index.
	Modifiers []float32 `yaml:"modifiers,omitempty"`

	// MinPublishWeight overrides the publish threshold.
	MinPublishWeight *uint64 `yaml:"min_publish_weight,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`
}

// IdentitySpec is one identity table entry. IntegrityHash accepts Go
// integer syntax ("0xFACEBEEF" or "4096").
type IdentitySpec struct {
	Identifier    string `yaml:"identifier,omitempty"`
	Prefix        string `yaml:"prefix,omitempty"`
	Tier          string `yaml:"tier"`
	IntegrityHash string `yaml:"integrity_hash"`
}

// Identity converts the table entry to an access.Identity.
func (s IdentitySpec) Identity() (access.Identity, error) {
	hash, err := strconv.ParseUint(s.IntegrityHash, 0, 64)
	if err != nil {
		return access.Identity{}, fmt.Errorf("integrity_hash %q: %w", s.IntegrityHash, err)
	}
	tier := ir.AccessTier(s.Tier)
	if parsed, err := ir.ParseTier(s.Tier); err == nil {
		tier = parsed
	}
	id := access.Identity{
		Identifier:    s.Identifier,
		Prefix:        s.Prefix,
		Tier:          tier,
		IntegrityHash: hash,
	}
	return id, id.Validate()
}

// Step is one submitted transaction.
type Step struct {
	Sender        string  `yaml:"sender"`
	Intent        string  `yaml:"intent"`
	Magnitude     uint16  `yaml:"magnitude"`
	Timestamp     uint64  `yaml:"timestamp"`
	ModifierIndex *int64  `yaml:"modifier_index,omitempty"`
	Modifier      *uint64 `yaml:"modifier,omitempty"`
	Message       string  `yaml:"message,omitempty"`

	// Expect is optional; without it the step is only traced.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Transaction returns the step's transaction.
func (s Step) Transaction() ir.Transaction {
	return ir.Transaction{
		Sender:          s.Sender,
		SignalMagnitude: s.Magnitude,
		Intent:          s.Intent,
		Timestamp:       s.Timestamp,
	}
}

// Outcome values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Expect specifies the expected result of a step. Unset fields are not checked.
type Expect struct {
	Outcome   string  `yaml:"outcome"`
	Code      string  `yaml:"code,omitempty"`
	Status    string  `yaml:"status,omitempty"`
	Modifier  *uint64 `yaml:"modifier,omitempty"`
	Weight    *uint64 `yaml:"weight,omitempty"`
	MinWeight *uint64 `yaml:"min_weight,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Policy != "" && !filepath.IsAbs(scenario.Policy) {
		scenario.Policy = filepath.Join(filepath.Dir(path), scenario.Policy)
	}
	if scenario.Policy != "" {
		if _, err := os.Stat(scenario.Policy); err != nil {
			return nil, fmt.Errorf("invalid scenario: policy file: %w", err)
		}
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Policy paths are left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, id := range s.Identities {
		if _, err := id.Identity(); err != nil {
			return fmt.Errorf("identities[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if step.ModifierIndex != nil && step.Modifier != nil {
			return fmt.Errorf("steps[%d]: modifier_index and modifier are mutually exclusive", i)
		}
		if step.Expect != nil {
			if err := validateExpect(i, step.Expect); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateExpect(index int, e *Expect) error {
	switch e.Outcome {
	case OutcomeAccepted:
		if e.Code != "" {
			return fmt.Errorf("steps[%d].expect: code is only valid for rejected steps", index)
		}
		switch ir.SubmissionStatus(e.Status) {
		case "", ir.StatusPublished, ir.StatusDropped:
		default:
			return fmt.Errorf("steps[%d].expect: unknown status %q", index, e.Status)
		}
	case OutcomeRejected:
		if e.Status != "" || e.Modifier != nil || e.Weight != nil || e.MinWeight != nil {
			return fmt.Errorf("steps[%d].expect: rejected steps take only a code", index)
		}
	case "":
		return fmt.Errorf("steps[%d].expect: outcome is required", index)
	default:
		return fmt.Errorf("steps[%d].expect: unknown outcome %q", index, e.Outcome)
	}
	return nil
}
