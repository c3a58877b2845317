package harmonize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/ir"
)

func relation(row int, id string, effect ir.Effect) ir.Record {
	return ir.Record{
		Row:        row,
		Practice:   "Conventional tillage",
		Effect:     "free text " + string(effect),
		Property:   "abundance",
		Actor:      "bacteria",
		Contrast:   "No tillage",
		ExternalID: id,
		Canonical:  effect,
	}
}

func TestDedup_KeepsFirst(t *testing.T) {
	records := []ir.Record{
		relation(1, "a", ir.Increase),
		relation(2, "b", ir.Increase),
		relation(3, "a", ir.Decrease),
	}

	out := Dedup(ir.Stage8, records, false, ir.DefaultColumns())

	require.Len(t, out.Kept, 2)
	assert.Equal(t, 1, out.Kept[0].Row)
	assert.Equal(t, 3, out.Kept[1].Row)
	assert.Equal(t, []ir.LossEvent{{
		Step:   "Step8",
		Column: "practice_unified+effect_normalized+property_unified+actor_unified+contrasting_practice_unified",
		Type:   ir.ReasonDeduped,
		Count:  1,
	}}, out.Events)
	assert.Equal(t, 2, out.Discards[0].Records[0].Row)
}

func TestDedup_ExternalIDParticipates(t *testing.T) {
	records := []ir.Record{
		relation(1, "a", ir.Increase),
		relation(2, "b", ir.Increase),
		relation(3, "a", ir.Increase),
	}

	out := Dedup(ir.Stage8, records, true, ir.DefaultColumns())

	require.Len(t, out.Kept, 2)
	assert.Equal(t, "unique_id+practice_unified+effect_normalized+property_unified+actor_unified+contrasting_practice_unified",
		out.Events[0].Column)
}

func TestDedup_UsesCanonicalNotFreeText(t *testing.T) {
	a := relation(1, "", ir.Decrease)
	b := relation(2, "", ir.Decrease)
	b.Effect = "a strong decrease"

	out := Dedup(ir.Stage8, []ir.Record{a, b}, false, ir.DefaultColumns())
	assert.Len(t, out.Kept, 1)
}

func TestDedup_Idempotent(t *testing.T) {
	records := []ir.Record{
		relation(1, "a", ir.Increase),
		relation(2, "a", ir.Increase),
		relation(3, "a", ir.NoEffect),
		relation(4, "a", ir.Increase),
	}

	once := Dedup(ir.Stage8, records, true, ir.DefaultColumns())
	twice := Dedup(ir.Stage8, once.Kept, true, ir.DefaultColumns())

	if diff := cmp.Diff(once.Kept, twice.Kept); diff != "" {
		t.Errorf("second dedup changed records (-once +twice):\n%s", diff)
	}
	assert.Equal(t, 0, twice.Removed())
}
