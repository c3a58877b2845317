package harness

import (
	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: no assertion failed and the rerun
	// reproduced the result digest.
	Pass bool `json:"pass"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID is the ID the run was recorded under.
	RunID string `json:"run_id"`

	InputDigest  string `json:"input_digest"`
	ResultDigest string `json:"result_digest"`

	// Final holds the retained records with the canonical effect applied.
	Final []ir.Record `json:"final"`

	// Ledger is the run's ledger as read back from the store.
	Ledger []ir.LossEvent `json:"ledger"`

	Summary []harmonize.SummaryRow `json:"summary"`

	// Discards maps non-empty bucket names to their sizes.
	Discards map[string]int `json:"discards"`

	Swapped int `json:"swapped"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Final:    []ir.Record{},
		Ledger:   []ir.LossEvent{},
		Summary:  []harmonize.SummaryRow{},
		Discards: make(map[string]int),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
