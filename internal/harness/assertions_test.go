package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

func intPtr(n int) *int { return &n }

func sampleResult() *Result {
	r := NewResult()
	r.Final = []ir.Record{
		{Row: 1, Practice: "Conventional tillage", Effect: "increase", Property: "abundance", Actor: "bacteria", Contrast: "No tillage"},
	}
	r.Ledger = []ir.LossEvent{
		{Step: "Step1", Column: "practice_unified", Type: ir.ReasonNA, Count: 2},
		{Step: "Step1", Column: "practice_unified", Type: ir.ReasonMultiplex, Count: 1},
		{Step: "Step3", Column: "property_unified", Type: ir.ReasonNA, Count: 1},
	}
	r.Summary = []harmonize.SummaryRow{
		{Step: "Step1", Description: "practice_unified", Kept: 4, Removed: 3},
	}
	r.Discards = map[string]int{"step1_na": 2, "step1_combined": 1}
	r.Swapped = 1
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertFinalCount, Count: intPtr(1)},
		{Type: AssertFinalContains, Record: map[string]string{"practice": "Conventional tillage", "effect": "increase"}},
		{Type: AssertFinalExcludes, Record: map[string]string{"practice": "No tillage"}},
		{Type: AssertLedgerContains, Step: "Step1", Reason: "NA", Count: intPtr(2)},
		{Type: AssertLedgerContains, Step: "Step1", Column: "practice_unified", Reason: "multiplex", Count: intPtr(1)},
		{Type: AssertStageCount, Step: "Step1", Kept: intPtr(4), Removed: intPtr(3)},
		{Type: AssertDiscardCount, Bucket: "step1_combined", Count: intPtr(1)},
		{Type: AssertDiscardCount, Bucket: "step8_deduped", Count: intPtr(0)},
		{Type: AssertSwapCount, Count: intPtr(1)},
	}
	assert.Empty(t, EvaluateAssertions(sampleResult(), assertions))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"final count", Assertion{Type: AssertFinalCount, Count: intPtr(3)}, "3 retained records"},
		{"contains", Assertion{Type: AssertFinalContains, Record: map[string]string{"actor": "fungi"}}, "not found in retained records"},
		{"excludes", Assertion{Type: AssertFinalExcludes, Record: map[string]string{"actor": "bacteria"}}, "found in retained records"},
		{"ledger count", Assertion{Type: AssertLedgerContains, Step: "Step1", Reason: "NA", Count: intPtr(5)}, "count 2"},
		{"ledger missing", Assertion{Type: AssertLedgerContains, Step: "Step6", Reason: "removed (invalid pair)", Count: intPtr(0)}, "no matching ledger event"},
		{"stage kept", Assertion{Type: AssertStageCount, Step: "Step1", Kept: intPtr(1)}, "kept 4"},
		{"stage removed", Assertion{Type: AssertStageCount, Step: "Step1", Removed: intPtr(0)}, "removed 3"},
		{"stage missing", Assertion{Type: AssertStageCount, Step: "Step2", Kept: intPtr(0)}, "summary row for Step2"},
		{"discard", Assertion{Type: AssertDiscardCount, Bucket: "step1_na", Count: intPtr(1)}, "step1_combined=1, step1_na=2"},
		{"swaps", Assertion{Type: AssertSwapCount, Count: intPtr(0)}, "1 swaps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, failures, 1)
			assert.True(t, strings.HasPrefix(failures[0], "assertion 0: Assertion failed: "+tt.assertion.Type))
			assert.Contains(t, failures[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesRetainedRecords(t *testing.T) {
	err := &AssertionError{
		Type:     AssertFinalCount,
		Expected: "2 retained records",
		Actual:   "1 retained records",
		Final:    sampleResult().Final,
	}
	msg := err.Error()
	assert.Contains(t, msg, "Expected: 2 retained records")
	assert.Contains(t, msg, "[row 1] Conventional tillage | increase | abundance | bacteria | No tillage")
}

func TestFormatFields_Sorted(t *testing.T) {
	got := formatFields(map[string]string{"practice": "a", "actor": "b"})
	assert.Equal(t, `{actor="b", practice="a"}`, got)
}
