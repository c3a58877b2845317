package harmonize

import "github.com/roach88/harmonize/internal/ir"

// Canonicalize puts one record into canonical orientation.
//
// A record whose trimmed pair is in orientation is returned unchanged.
// Otherwise a new record is returned with practice and contrast swapped and
// the canonical effect inverted; swapped reports which case applied.
func Canonicalize(r ir.Record, orientation ir.PairSet) (out ir.Record, swapped bool) {
	if orientation.Has(r.Pair()) {
		return r, false
	}
	return r.Swapped(), true
}

// Orient runs the orientation canonicalizer as a stage. It never drops a
// record and emits no loss events.
func Orient(stage ir.Stage, records []ir.Record, orientation ir.PairSet) StageOutput {
	kept := make([]ir.Record, len(records))
	swaps := 0
	for i, r := range records {
		out, swapped := Canonicalize(r, orientation)
		if swapped {
			swaps++
		}
		kept[i] = out
	}
	o := newOutput(stage, kept)
	o.Swapped = swaps
	return o
}
