package harmonize

import "github.com/roach88/harmonize/internal/ir"

// dedupKey is the composite identity of a relation. The external id takes
// part only when the source table carries the id column.
type dedupKey struct {
	externalID string
	practice   string
	effect     ir.Effect
	property   string
	actor      string
	contrast   string
}

func keyOf(r ir.Record, withExternalID bool) dedupKey {
	k := dedupKey{
		practice: r.Practice,
		effect:   r.Canonical,
		property: r.Property,
		actor:    r.Actor,
		contrast: r.Contrast,
	}
	if withExternalID {
		k.externalID = r.ExternalID
	}
	return k
}

// Dedup keeps the first record per composite key, in input order, and
// files later occurrences in the "deduped" bucket. The key uses the
// canonical effect, never the free text. Dedup is idempotent.
func Dedup(stage ir.Stage, records []ir.Record, withExternalID bool, cols ir.Columns) StageOutput {
	seen := make(map[dedupKey]struct{}, len(records))
	kept := make([]ir.Record, 0, len(records))
	var dupes []ir.Record
	for _, r := range records {
		k := keyOf(r, withExternalID)
		if _, ok := seen[k]; ok {
			dupes = append(dupes, r)
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return newOutput(stage, kept,
		ir.Bucket{Stage: stage, Column: cols.DedupLabel(withExternalID), Reason: ir.ReasonDeduped, Records: dupes},
	)
}
