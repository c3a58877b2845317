package harmonize

import (
	"github.com/roach88/harmonize/internal/ir"
)

// Input is everything one pipeline run depends on.
type Input struct {
	Records     []ir.Record
	Contrast    ir.PairSet
	Orientation ir.PairSet
	Columns     ir.Columns

	// Delimiter separates multiple values in one cell. Empty means ",".
	Delimiter string

	// WithExternalID is set when the source table has the id column.
	WithExternalID bool
}

// Result is the outcome of a run. Nothing in a Result is shared with the
// Input except the Extra maps of records.
type Result struct {
	// Final is the Stage 8 kept set.
	Final []ir.Record

	// Stages holds every stage output, Stage1 through Stage8.
	Stages []StageOutput

	Ledger Ledger

	// Discards holds every bucket in stage order, empty ones included.
	Discards []ir.Bucket

	Summary []SummaryRow
}

// SummaryRow is one line of the per-step summary.
type SummaryRow struct {
	Step        string `json:"step"`
	Description string `json:"description"`
	Kept        int    `json:"kept"`
	Removed     int    `json:"removed"`
}

// Swaps returns the number of records the orientation stage reversed.
func (r *Result) Swaps() int {
	for _, s := range r.Stages {
		if s.Stage == ir.Stage7 {
			return s.Swapped
		}
	}
	return 0
}

// Output returns the output of a single stage.
func (r *Result) Output(stage ir.Stage) (StageOutput, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageOutput{}, false
}

// NonEmptyDiscards returns the buckets that hold at least one record.
func (r *Result) NonEmptyDiscards() []ir.Bucket {
	var out []ir.Bucket
	for _, b := range r.Discards {
		if len(b.Records) > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Digest returns the ResultDigest of the final records and the ledger.
func (r *Result) Digest() (string, error) {
	return ir.ResultDigest(r.Final, r.Ledger.Events())
}

// Digest returns the InputDigest of in, after defaults are applied.
func (in Input) Digest() (string, error) {
	in = in.withDefaults()
	return ir.InputDigest(ir.DigestInput{
		Records:        in.Records,
		Contrast:       in.Contrast,
		Orientation:    in.Orientation,
		Columns:        in.Columns,
		Delimiter:      in.Delimiter,
		WithExternalID: in.WithExternalID,
	})
}

func (in Input) withDefaults() Input {
	if in.Delimiter == "" {
		in.Delimiter = DefaultDelimiter
	}
	in.Columns = in.Columns.WithDefaults()
	return in
}

func (in Input) validate() error {
	if in.Contrast == nil {
		return NewInvalidInputError("contrast allow-list is nil")
	}
	if in.Orientation == nil {
		return NewInvalidInputError("orientation allow-list is nil")
	}
	return nil
}

// Descriptions used in the summary, keyed by stage.
func description(stage ir.Stage, cols ir.Columns) string {
	switch stage {
	case ir.Stage1:
		return cols.Practice
	case ir.Stage2:
		return cols.Effect
	case ir.Stage3:
		return cols.Property
	case ir.Stage4:
		return cols.Actor
	case ir.Stage5:
		return cols.Contrast
	case ir.Stage6:
		return "valid driver contrasts"
	case ir.Stage7:
		return "swaps + effect inversion"
	case ir.Stage8:
		return "deduplication"
	}
	return ""
}

// Run executes the eight stages in their fixed order.
//
//	Stage1 split practice    Stage5 split contrast
//	Stage2 normalize effect  Stage6 validate pair
//	Stage3 split property    Stage7 canonicalize orientation
//	Stage4 split actor       Stage8 dedup
//
// Run is deterministic: equal inputs give equal results. It fails only
// for a structurally unusable Input, before any stage runs.
func Run(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	in = in.withDefaults()
	cols := in.Columns

	steps := []func([]ir.Record) StageOutput{
		func(rs []ir.Record) StageOutput {
			return Split(ir.Stage1, rs, ir.FieldPractice, cols.Practice, in.Delimiter)
		},
		func(rs []ir.Record) StageOutput {
			return Normalize(ir.Stage2, rs, cols.Effect)
		},
		func(rs []ir.Record) StageOutput {
			return Split(ir.Stage3, rs, ir.FieldProperty, cols.Property, in.Delimiter)
		},
		func(rs []ir.Record) StageOutput {
			return Split(ir.Stage4, rs, ir.FieldActor, cols.Actor, in.Delimiter)
		},
		func(rs []ir.Record) StageOutput {
			return Split(ir.Stage5, rs, ir.FieldContrast, cols.Contrast, in.Delimiter)
		},
		func(rs []ir.Record) StageOutput {
			return ValidatePairs(ir.Stage6, rs, in.Contrast)
		},
		func(rs []ir.Record) StageOutput {
			return Orient(ir.Stage7, rs, in.Orientation)
		},
		func(rs []ir.Record) StageOutput {
			return Dedup(ir.Stage8, rs, in.WithExternalID, cols)
		},
	}

	res := &Result{
		Stages:  make([]StageOutput, 0, len(steps)),
		Summary: make([]SummaryRow, 0, len(steps)),
	}
	current := append([]ir.Record(nil), in.Records...)
	var ledger Ledger
	for _, step := range steps {
		out := step(current)
		ledger = ledger.Append(out.Events...)
		res.Stages = append(res.Stages, out)
		res.Discards = append(res.Discards, out.Discards...)
		res.Summary = append(res.Summary, SummaryRow{
			Step:        out.Stage.Step(),
			Description: description(out.Stage, cols),
			Kept:        len(out.Kept),
			Removed:     out.Removed(),
		})
		current = out.Kept
	}
	res.Final = current
	res.Ledger = ledger
	return res, nil
}
