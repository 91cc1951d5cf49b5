package harness

// Trace event types.
const (
	EventDecision   = "decision"
	EventModifier   = "modifier"
	EventSubmission = "submission"
	EventRejection  = "rejection"
)

// TraceEvent is one entry in a scenario trace. Which fields are set depends
// on Type.
type TraceEvent struct {
	Type string `json:"type"`
	Step int    `json:"step"`

	// decision
	Identifier string `json:"identifier,omitempty"`
	Intent     string `json:"intent,omitempty"`
	Tier       string `json:"tier,omitempty"`
	Granted    bool   `json:"granted,omitempty"`

	// decision and rejection
	Code string `json:"code,omitempty"`

	// modifier
	Index      int64  `json:"index,omitempty"`
	Level      string `json:"level,omitempty"`
	RawBits    uint32 `json:"raw_bits,omitempty"`
	HasRaw     bool   `json:"has_raw,omitempty"`
	Multiplier uint64 `json:"multiplier,omitempty"`

	// submission
	ID       string `json:"id,omitempty"`
	Seq      int64  `json:"seq,omitempty"`
	TxDigest string `json:"tx_digest,omitempty"`
	Modifier uint64 `json:"modifier,omitempty"`
	Weight   uint64 `json:"weight,omitempty"`
	Status   string `json:"status,omitempty"`
}

// LedgerSummary counts the records left in the ledger after a run.
type LedgerSummary struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Dropped   int `json:"dropped"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause matched.
	Pass bool `json:"pass"`

	// Trace holds every event in step order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ledger summarizes the database after the last step.
	Ledger LedgerSummary `json:"ledger"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
