package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the retained records to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Final    []ir.Record // Retained records for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Final) > 0 {
		fmt.Fprintf(&buf, "\nRetained records:\n")
		for _, r := range e.Final {
			fmt.Fprintf(&buf, "  [row %d] %s | %s | %s | %s | %s\n",
				r.Row, r.Practice, r.Effect, r.Property, r.Actor, r.Contrast)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalCount:
		return assertFinalCount(result, a)
	case AssertFinalContains:
		return assertFinalContains(result, a, true)
	case AssertFinalExcludes:
		return assertFinalContains(result, a, false)
	case AssertLedgerContains:
		return assertLedgerContains(result, a)
	case AssertStageCount:
		return assertStageCount(result, a)
	case AssertDiscardCount:
		return assertDiscardCount(result, a)
	case AssertSwapCount:
		return assertSwapCount(result, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertFinalCount(result *Result, a Assertion) error {
	if len(result.Final) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d retained records", *a.Count),
		Actual:   fmt.Sprintf("%d retained records", len(result.Final)),
		Final:    result.Final,
	}
}

// assertFinalContains checks for a retained record matching every field of
// a.Record (subset semantics). want selects contains or excludes.
func assertFinalContains(result *Result, a Assertion, want bool) error {
	found := false
	for _, r := range result.Final {
		if matchRecord(r, a.Record) {
			found = true
			break
		}
	}
	if found == want {
		return nil
	}

	expected, actual := "record present", "not found in retained records"
	if !want {
		expected, actual = "record absent", "found in retained records"
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s: %s", expected, formatFields(a.Record)),
		Actual:   actual,
		Final:    result.Final,
	}
}

// matchRecord reports whether r carries every expected field value.
func matchRecord(r ir.Record, expected map[string]string) bool {
	for k, v := range expected {
		if r.Get(ir.Field(k)) != v {
			return false
		}
	}
	return true
}

// assertLedgerContains sums the matching ledger events. An empty Column
// matches every column of the step.
func assertLedgerContains(result *Result, a Assertion) error {
	total, matched := 0, false
	for _, e := range result.Ledger {
		if e.Step != a.Step || string(e.Type) != a.Reason {
			continue
		}
		if a.Column != "" && e.Column != a.Column {
			continue
		}
		total += e.Count
		matched = true
	}
	if matched && total == *a.Count {
		return nil
	}

	actual := "no matching ledger event"
	if matched {
		actual = fmt.Sprintf("count %d", total)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s %s %q count %d", a.Step, a.Column, a.Reason, *a.Count),
		Actual:   actual,
	}
}

func assertStageCount(result *Result, a Assertion) error {
	for _, row := range result.Summary {
		if row.Step != a.Step {
			continue
		}
		if a.Kept != nil && row.Kept != *a.Kept {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s kept %d", a.Step, *a.Kept),
				Actual:   fmt.Sprintf("kept %d", row.Kept),
			}
		}
		if a.Removed != nil && row.Removed != *a.Removed {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s removed %d", a.Step, *a.Removed),
				Actual:   fmt.Sprintf("removed %d", row.Removed),
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("summary row for %s", a.Step),
		Actual:   "not found",
	}
}

func assertDiscardCount(result *Result, a Assertion) error {
	got := result.Discards[a.Bucket]
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("bucket %s holds %d records", a.Bucket, *a.Count),
		Actual:   fmt.Sprintf("%d records (buckets: %s)", got, formatBuckets(result.Discards)),
	}
}

func assertSwapCount(result *Result, a Assertion) error {
	if result.Swapped == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d swaps", *a.Count),
		Actual:   fmt.Sprintf("%d swaps", result.Swapped),
		Final:    result.Final,
	}
}

// formatFields renders a field map with sorted keys for stable messages.
func formatFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, fields[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatBuckets(discards map[string]int) string {
	if len(discards) == 0 {
		return "none"
	}
	names := make([]string, 0, len(discards))
	for name, n := range discards {
		names = append(names, fmt.Sprintf("%s=%d", name, n))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
