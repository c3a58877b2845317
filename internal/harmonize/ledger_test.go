package harmonize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/harmonize/internal/ir"
)

func TestLedger_AppendDoesNotModifyReceiver(t *testing.T) {
	base := NewLedger(ir.NewLossEvent(ir.Stage1, "p", ir.ReasonNA, 2))
	next := base.Append(ir.NewLossEvent(ir.Stage2, "effect", ir.ReasonInvalid, 1))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, next.Len())
}

func TestLedger_EventsIsCopy(t *testing.T) {
	l := NewLedger(ir.NewLossEvent(ir.Stage1, "p", ir.ReasonNA, 2))
	events := l.Events()
	events[0].Count = 99

	n, ok := l.Count("Step1", "p", ir.ReasonNA)
	assert.True(t, ok)
	assert.Equal(t, 2, n)
}

func TestLedger_Sorted(t *testing.T) {
	l := NewLedger(
		ir.NewLossEvent(ir.Stage3, "b", ir.ReasonNA, 1),
		ir.NewLossEvent(ir.Stage1, "p", ir.ReasonNA, 1),
		ir.NewLossEvent(ir.Stage3, "a", ir.ReasonMultiplex, 1),
		ir.NewLossEvent(ir.Stage3, "a", ir.ReasonNA, 1),
	)

	got := l.Sorted()

	assert.Equal(t, []ir.LossEvent{
		{Step: "Step1", Column: "p", Type: ir.ReasonNA, Count: 1},
		{Step: "Step3", Column: "a", Type: ir.ReasonNA, Count: 1},
		{Step: "Step3", Column: "a", Type: ir.ReasonMultiplex, Count: 1},
		{Step: "Step3", Column: "b", Type: ir.ReasonNA, Count: 1},
	}, got)
	assert.Equal(t, "Step3", l.Events()[0].Step, "Sorted must not reorder the ledger")
}

func TestLedger_Totals(t *testing.T) {
	l := NewLedger(
		ir.NewLossEvent(ir.Stage1, "p", ir.ReasonNA, 2),
		ir.NewLossEvent(ir.Stage1, "p", ir.ReasonMultiplex, 3),
		ir.NewLossEvent(ir.Stage3, "q", ir.ReasonMultiplex, 1),
	)

	assert.Equal(t, 5, l.Removed(ir.Stage1))
	assert.Equal(t, 0, l.Removed(ir.Stage7))
	assert.Equal(t, 6, l.Total())
	assert.Equal(t, 4, l.CountReason(ir.ReasonMultiplex))

	_, ok := l.Count("Step8", "x", ir.ReasonDeduped)
	assert.False(t, ok)
}
