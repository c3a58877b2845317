package harmonize

import (
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// DefaultDelimiter joins multiple tokens in one categorical cell.
const DefaultDelimiter = ","

// Cardinality classifies the content of one categorical cell.
type Cardinality int

const (
	Single Cardinality = iota
	Missing
	Multi
)

func (c Cardinality) String() string {
	switch c {
	case Single:
		return "single"
	case Missing:
		return "missing"
	case Multi:
		return "multi"
	}
	return "unknown"
}

// Classify decides the cardinality of a cell. Blank values and NA tokens
// (see ir.IsMissing) are missing; values containing delim are multi-valued.
func Classify(value, delim string) Cardinality {
	if ir.IsMissing(value) {
		return Missing
	}
	if strings.Contains(value, delim) {
		return Multi
	}
	return Single
}

// Partition splits records by the cardinality of field. The three slices
// are disjoint, keep input order, and together hold every input record.
func Partition(records []ir.Record, field ir.Field, delim string) (single, missing, multi []ir.Record) {
	single = make([]ir.Record, 0, len(records))
	for _, r := range records {
		switch Classify(r.Get(field), delim) {
		case Missing:
			missing = append(missing, r)
		case Multi:
			multi = append(multi, r)
		default:
			single = append(single, r)
		}
	}
	return single, missing, multi
}

// Split runs the categorical splitter as a stage. Only single-valued
// records are kept. Two loss events are always emitted, "NA" then
// "multiplex", even when their counts are zero.
func Split(stage ir.Stage, records []ir.Record, field ir.Field, column, delim string) StageOutput {
	single, missing, multi := Partition(records, field, delim)
	return newOutput(stage, single,
		ir.Bucket{Stage: stage, Column: column, Reason: ir.ReasonNA, Records: missing},
		ir.Bucket{Stage: stage, Column: column, Reason: ir.ReasonMultiplex, Records: multi},
	)
}
