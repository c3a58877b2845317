package harmonize

import (
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// NormalizeEffect maps free text to a canonical effect.
//
// The search is a case-insensitive substring match against ir.Effects in
// priority order; the first token found wins. Text mentioning both
// "increase" and "decrease" therefore normalizes to increase. Returns
// false when no token occurs.
func NormalizeEffect(text string) (ir.Effect, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, e := range ir.Effects {
		if strings.Contains(lower, string(e)) {
			return e, true
		}
	}
	return "", false
}

// Normalize runs the effect normalizer as a stage. Matched records are
// kept with Canonical set; the free-text Effect stays untouched for audit.
// Unmatched records go to the "invalid/NA" bucket.
func Normalize(stage ir.Stage, records []ir.Record, column string) StageOutput {
	kept := make([]ir.Record, 0, len(records))
	var invalid []ir.Record
	for _, r := range records {
		e, ok := NormalizeEffect(r.Effect)
		if !ok {
			invalid = append(invalid, r)
			continue
		}
		kept = append(kept, r.WithCanonical(e))
	}
	return newOutput(stage, kept,
		ir.Bucket{Stage: stage, Column: column, Reason: ir.ReasonInvalid, Records: invalid},
	)
}
