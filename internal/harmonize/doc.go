// Package harmonize implements the record harmonization pipeline.
//
// The pipeline reduces raw practice-effect-actor relation records to a
// canonical, deduplicated, directionally consistent set, and accounts for
// every record it removes.
//
// ARCHITECTURE:
//
// Linear State Machine:
// Run threads the kept set through eight stages in a fixed order:
//
//	Stage1 split(practice)
//	Stage2 normalize(effect)
//	Stage3 split(property)
//	Stage4 split(actor)
//	Stage5 split(contrast)
//	Stage6 validate(practice, contrast)
//	Stage7 canonicalize(orientation)
//	Stage8 dedup
//
// There is no branching, no retry and no back-edge. Each stage returns a
// StageOutput (kept records, discard buckets, loss events) and never
// modifies its input. A discarded record is filed once and never looked at
// again by a later stage.
//
// Determinism:
// Run is a pure function of its Input. It performs no I/O, reads no clock
// and iterates no map where order could leak into the output. Identical
// inputs produce identical Results, which ir.ResultDigest can prove.
//
// Errors:
// Per-record problems (missing or multiplex fields, unmatched effects,
// invalid pairs, duplicates) are never errors; they become buckets and
// ledger events. Only structural problems (missing columns, malformed
// allow-list entries, an unusable Input) are returned as *Error, and they
// are returned before any stage runs.
package harmonize
