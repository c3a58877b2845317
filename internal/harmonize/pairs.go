package harmonize

import (
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// PairColumn is the ledger column label of the pair validation stage.
const PairColumn = "(practice,contrast)"

// ValidatePairs keeps records whose trimmed (practice, contrast) pair is in
// allow. Matching is exact. Other records go to the
// "removed (invalid pair)" bucket.
func ValidatePairs(stage ir.Stage, records []ir.Record, allow ir.PairSet) StageOutput {
	kept := make([]ir.Record, 0, len(records))
	var removed []ir.Record
	for _, r := range records {
		if allow.Has(r.Pair()) {
			kept = append(kept, r)
			continue
		}
		removed = append(removed, r)
	}
	return newOutput(stage, kept,
		ir.Bucket{Stage: stage, Column: PairColumn, Reason: ir.ReasonInvalidPair, Records: removed},
	)
}

// ListEntry is one raw allow-list value with its 1-based source line.
type ListEntry struct {
	Line  int
	Value string
}

// ParsePair splits "practice;contrast" into a trimmed pair. It fails unless
// there are exactly two non-empty tokens.
func ParsePair(entry string) (ir.Pair, bool) {
	parts := strings.Split(entry, ir.PairSeparator)
	if len(parts) != 2 {
		return ir.Pair{}, false
	}
	p := ir.NewPair(parts[0], parts[1])
	if p.Practice == "" || p.Contrast == "" {
		return ir.Pair{}, false
	}
	return p, true
}

// ParsePairList builds an allow-list. Blank and NA entries are skipped; the first
// malformed entry fails the whole list.
func ParsePairList(source string, entries []ListEntry) (ir.PairSet, error) {
	set := make(ir.PairSet, len(entries))
	for _, e := range entries {
		if ir.IsMissing(e.Value) {
			continue
		}
		p, ok := ParsePair(e.Value)
		if !ok {
			return nil, NewListEntryError(source, e.Line, e.Value)
		}
		set[p] = struct{}{}
	}
	return set, nil
}

// ParsePairStrings is ParsePairList for in-memory lists; entry i is line i+1.
func ParsePairStrings(source string, values []string) (ir.PairSet, error) {
	entries := make([]ListEntry, len(values))
	for i, v := range values {
		entries[i] = ListEntry{Line: i + 1, Value: v}
	}
	return ParsePairList(source, entries)
}
