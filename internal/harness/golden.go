package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/accord/internal/ir"
)

// TraceSnapshot captures the trace of a scenario execution for golden
// comparison.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Ledger       LedgerSummary
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical
// JSON serialization. Each event carries only the fields of its type.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"type": ev.Type,
			"step": ev.Step,
		}
		switch ev.Type {
		case EventDecision:
			m["identifier"] = ev.Identifier
			m["intent"] = ev.Intent
			m["granted"] = ev.Granted
			if ev.Tier != "" {
				m["tier"] = ev.Tier
			}
			if ev.Code != "" {
				m["code"] = ev.Code
			}
		case EventModifier:
			m["index"] = ev.Index
			m["level"] = ev.Level
			m["multiplier"] = ev.Multiplier
			if ev.HasRaw {
				m["raw_bits"] = fmt.Sprintf("0x%08x", ev.RawBits)
			}
		case EventSubmission:
			m["id"] = ev.ID
			m["seq"] = ev.Seq
			m["tx_digest"] = ev.TxDigest
			m["modifier"] = ev.Modifier
			m["weight"] = ev.Weight
			m["status"] = ev.Status
		case EventRejection:
			m["code"] = ev.Code
		}
		traceList[i] = m
	}

	return map[string]any{
		"record_version": ir.RecordVersion,
		"scenario_name":  s.ScenarioName,
		"trace":          traceList,
		"ledger": map[string]any{
			"total":     s.Ledger.Total,
			"published": s.Ledger.Published,
			"dropped":   s.Ledger.Dropped,
		},
	}
}

// Snapshot renders a result as canonical JSON.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Ledger:       result.Ledger,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
