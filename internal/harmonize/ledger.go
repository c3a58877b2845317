package harmonize

import (
	"slices"
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// Ledger is the append-only audit trail of a run.
//
// Ledger has value semantics: Append returns a new Ledger and leaves the
// receiver untouched, so a ledger handed out earlier never changes.
type Ledger struct {
	events []ir.LossEvent
}

// NewLedger creates a ledger holding events.
func NewLedger(events ...ir.LossEvent) Ledger {
	return Ledger{}.Append(events...)
}

// Append returns a new ledger with events added at the end.
func (l Ledger) Append(events ...ir.LossEvent) Ledger {
	out := make([]ir.LossEvent, 0, len(l.events)+len(events))
	out = append(out, l.events...)
	out = append(out, events...)
	return Ledger{events: out}
}

// Events returns a copy of the events in append order.
func (l Ledger) Events() []ir.LossEvent {
	return slices.Clone(l.events)
}

// Len returns the number of events.
func (l Ledger) Len() int {
	return len(l.events)
}

// Sorted returns a copy ordered by step, column, then type.
// Step labels compare by stage number so Step10 would follow Step9.
func (l Ledger) Sorted() []ir.LossEvent {
	out := slices.Clone(l.events)
	slices.SortStableFunc(out, func(a, b ir.LossEvent) int {
		if c := compareSteps(a.Step, b.Step); c != 0 {
			return c
		}
		if c := strings.Compare(a.Column, b.Column); c != 0 {
			return c
		}
		return strings.Compare(string(a.Type), string(b.Type))
	})
	return out
}

func compareSteps(a, b string) int {
	sa, errA := ir.ParseStage(a)
	sb, errB := ir.ParseStage(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return int(sa) - int(sb)
}

// Removed sums the counts recorded for a stage.
func (l Ledger) Removed(stage ir.Stage) int {
	step := stage.Step()
	n := 0
	for _, e := range l.events {
		if e.Step == step {
			n += e.Count
		}
	}
	return n
}

// Total sums every count in the ledger.
func (l Ledger) Total() int {
	n := 0
	for _, e := range l.events {
		n += e.Count
	}
	return n
}

// Count looks up the event for (step, column, reason).
func (l Ledger) Count(step, column string, reason ir.Reason) (int, bool) {
	for _, e := range l.events {
		if e.Step == step && e.Column == column && e.Type == reason {
			return e.Count, true
		}
	}
	return 0, false
}

// CountReason sums the counts for a reason across all steps and columns.
func (l Ledger) CountReason(reason ir.Reason) int {
	n := 0
	for _, e := range l.events {
		if e.Type == reason {
			n += e.Count
		}
	}
	return n
}
