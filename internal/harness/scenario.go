package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/harmonize/internal/ir"
)

// Scenario defines a conformance scenario: a small record set, the two
// allow-lists, and assertions on the pipeline outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Delimiter overrides the multi-value delimiter. Empty means ",".
	Delimiter string `yaml:"delimiter,omitempty"`

	// WithExternalID adds the external id to the dedup key.
	WithExternalID bool `yaml:"with_external_id,omitempty"`

	// ContrastList and OrientationList hold "practice;contrast" entries.
	ContrastList    []string `yaml:"contrast_list"`
	OrientationList []string `yaml:"orientation_list"`

	// Records are the input relations. A zero row is replaced by the
	// 1-based position in the list.
	Records []ir.Record `yaml:"records"`

	// Assertions validate the outcome.
	// Supported types: final_count, final_contains, final_excludes,
	// ledger_contains, stage_count, discard_count, swap_count
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a run.
type Assertion struct {
	// Type selects the assertion.
	Type string `yaml:"type"`

	// Count is the expected number (final_count, ledger_contains,
	// discard_count, swap_count).
	Count *int `yaml:"count,omitempty"`

	// Record is a subset of final record fields (final_contains,
	// final_excludes). "effect" compares against the canonical token.
	Record map[string]string `yaml:"record,omitempty"`

	// Step is a "StepN" label (ledger_contains, stage_count).
	Step string `yaml:"step,omitempty"`

	// Column narrows ledger_contains to one column. Optional.
	Column string `yaml:"column,omitempty"`

	// Reason is the ledger type (ledger_contains).
	Reason string `yaml:"reason,omitempty"`

	// Bucket is a discard bucket name such as "step1_combined" (discard_count).
	Bucket string `yaml:"bucket,omitempty"`

	// Kept and Removed are expected summary numbers (stage_count).
	Kept    *int `yaml:"kept,omitempty"`
	Removed *int `yaml:"removed,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalCount     = "final_count"
	AssertFinalContains  = "final_contains"
	AssertFinalExcludes  = "final_excludes"
	AssertLedgerContains = "ledger_contains"
	AssertStageCount     = "stage_count"
	AssertDiscardCount   = "discard_count"
	AssertSwapCount      = "swap_count"
)

// recordFields are the keys allowed in Assertion.Record.
var recordFields = map[string]bool{
	"practice":    true,
	"effect":      true,
	"property":    true,
	"actor":       true,
	"contrast":    true,
	"external_id": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
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

	if len(s.Records) == 0 {
		return fmt.Errorf("records list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalCount, AssertSwapCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertFinalContains, AssertFinalExcludes:
		if len(a.Record) == 0 {
			return fmt.Errorf("assertions[%d]: record is required for %s", index, a.Type)
		}
		for k := range a.Record {
			if !recordFields[k] {
				return fmt.Errorf("assertions[%d]: unknown record field %q", index, k)
			}
		}
	case AssertLedgerContains:
		if _, err := ir.ParseStage(a.Step); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for ledger_contains", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for ledger_contains", index)
		}
	case AssertStageCount:
		if _, err := ir.ParseStage(a.Step); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Kept == nil && a.Removed == nil {
			return fmt.Errorf("assertions[%d]: kept or removed is required for stage_count", index)
		}
	case AssertDiscardCount:
		if a.Bucket == "" {
			return fmt.Errorf("assertions[%d]: bucket is required for discard_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for discard_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
