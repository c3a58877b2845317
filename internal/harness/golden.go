package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/harmonize/internal/ir"
)

// Snapshot captures the observable outcome of a scenario execution.
// It is serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Final        []ir.Record
	Ledger       []ir.LossEvent
	Summary      []SummaryLine
	Discards     map[string]int
	Swapped      int
}

// SummaryLine is the snapshot form of a summary row.
type SummaryLine struct {
	Step    string
	Kept    int
	Removed int
}

// NewSnapshot builds a snapshot from a result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		Final:        result.Final,
		Ledger:       result.Ledger,
		Discards:     result.Discards,
		Swapped:      result.Swapped,
	}
	for _, row := range result.Summary {
		s.Summary = append(s.Summary, SummaryLine{Step: row.Step, Kept: row.Kept, Removed: row.Removed})
	}
	return s
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s Snapshot) toCanonicalMap() map[string]any {
	final := make([]any, len(s.Final))
	for i, r := range s.Final {
		m := map[string]any{
			"row":      r.Row,
			"practice": r.Practice,
			"effect":   r.Effect,
			"property": r.Property,
			"actor":    r.Actor,
			"contrast": r.Contrast,
		}
		if r.ExternalID != "" {
			m["external_id"] = r.ExternalID
		}
		final[i] = m
	}

	ledger := make([]any, len(s.Ledger))
	for i, e := range s.Ledger {
		ledger[i] = map[string]any{
			"step":   e.Step,
			"column": e.Column,
			"type":   string(e.Type),
			"count":  e.Count,
		}
	}

	summary := make([]any, len(s.Summary))
	for i, row := range s.Summary {
		summary[i] = map[string]any{
			"step":    row.Step,
			"kept":    row.Kept,
			"removed": row.Removed,
		}
	}

	discards := make(map[string]any, len(s.Discards))
	for name, n := range s.Discards {
		discards[name] = n
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"final":         final,
		"ledger":        ledger,
		"summary":       summary,
		"discards":      discards,
		"swapped":       s.Swapped,
	}
}

// Marshal returns the canonical JSON form of the snapshot.
func (s Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
