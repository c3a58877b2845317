package harmonize

import "github.com/roach88/harmonize/internal/ir"

// StageOutput is what one stage produces. It is built once and never
// modified afterwards; Kept is a fresh slice owned by the output.
type StageOutput struct {
	Stage    ir.Stage
	Kept     []ir.Record
	Discards []ir.Bucket
	Events   []ir.LossEvent

	// Swapped counts records the orientation stage reversed. Zero elsewhere.
	Swapped int
}

// Removed returns the number of records the stage diverted.
func (o StageOutput) Removed() int {
	n := 0
	for _, b := range o.Discards {
		n += len(b.Records)
	}
	return n
}

// bucketsToEvents derives one loss event per bucket, in bucket order.
func bucketsToEvents(buckets []ir.Bucket) []ir.LossEvent {
	events := make([]ir.LossEvent, len(buckets))
	for i, b := range buckets {
		events[i] = b.Event()
	}
	return events
}

// newOutput assembles a StageOutput whose events mirror its buckets.
func newOutput(stage ir.Stage, kept []ir.Record, buckets ...ir.Bucket) StageOutput {
	if kept == nil {
		kept = []ir.Record{}
	}
	return StageOutput{
		Stage:    stage,
		Kept:     kept,
		Discards: buckets,
		Events:   bucketsToEvents(buckets),
	}
}
