package ir

import (
	"fmt"
	"strings"
)

// Stage is one of the eight pipeline states.
type Stage int

const (
	Stage1 Stage = iota + 1 // split practice
	Stage2                  // normalize effect
	Stage3                  // split property
	Stage4                  // split actor
	Stage5                  // split contrast
	Stage6                  // validate pair
	Stage7                  // canonicalize orientation
	Stage8                  // dedup
)

// Stages lists every stage in execution order.
var Stages = []Stage{Stage1, Stage2, Stage3, Stage4, Stage5, Stage6, Stage7, Stage8}

// Step returns the ledger step label ("Step1" ... "Step8").
func (s Stage) Step() string {
	return fmt.Sprintf("Step%d", int(s))
}

// Tag returns the lowercase step label used in file names.
func (s Stage) Tag() string {
	return strings.ToLower(s.Step())
}

func (s Stage) String() string {
	return s.Step()
}

// ParseStage parses a "StepN" label.
func ParseStage(step string) (Stage, error) {
	var n int
	if _, err := fmt.Sscanf(step, "Step%d", &n); err != nil || n < 1 || n > len(Stages) {
		return 0, fmt.Errorf("unknown step %q", step)
	}
	return Stage(n), nil
}

// Reason is the ledger "type" of a removal.
type Reason string

const (
	ReasonNA          Reason = "NA"
	ReasonMultiplex   Reason = "multiplex"
	ReasonInvalid     Reason = "invalid/NA"
	ReasonInvalidPair Reason = "removed (invalid pair)"
	ReasonDeduped     Reason = "deduped"
)

// FileTag returns the short name used for discard files.
func (r Reason) FileTag() string {
	switch r {
	case ReasonNA:
		return "na"
	case ReasonMultiplex:
		return "combined"
	case ReasonInvalid:
		return "invalid"
	case ReasonInvalidPair:
		return "removed"
	case ReasonDeduped:
		return "deduped"
	}
	return strings.ToLower(strings.NewReplacer(" ", "_", "/", "_", "(", "", ")", "").Replace(string(r)))
}

// LossEvent is one immutable audit row: how many records a stage removed
// from a column for a reason.
type LossEvent struct {
	Step   string `json:"step" yaml:"step"`
	Column string `json:"column" yaml:"column"`
	Type   Reason `json:"type" yaml:"type"`
	Count  int    `json:"count" yaml:"count"`
}

// NewLossEvent builds a LossEvent for a stage.
func NewLossEvent(s Stage, column string, reason Reason, count int) LossEvent {
	return LossEvent{Step: s.Step(), Column: column, Type: reason, Count: count}
}

// Bucket holds the records a stage diverted for one reason.
// Buckets are filed once and never re-examined.
type Bucket struct {
	Stage   Stage    `json:"stage"`
	Column  string   `json:"column"`
	Reason  Reason   `json:"reason"`
	Records []Record `json:"records"`
}

// Name is the bucket's file stem, e.g. "step1_combined".
func (b Bucket) Name() string {
	return b.Stage.Tag() + "_" + b.Reason.FileTag()
}

// Event returns the ledger event describing this bucket.
func (b Bucket) Event() LossEvent {
	return NewLossEvent(b.Stage, b.Column, b.Reason, len(b.Records))
}
