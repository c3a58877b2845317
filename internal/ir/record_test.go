package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSwapped_ReturnsNewValue(t *testing.T) {
	orig := Record{
		Practice:  "No tillage",
		Contrast:  "Conventional tillage",
		Effect:    "reduced abundance",
		Canonical: Decrease,
	}

	swapped := orig.Swapped()

	assert.Equal(t, "Conventional tillage", swapped.Practice)
	assert.Equal(t, "No tillage", swapped.Contrast)
	assert.Equal(t, Increase, swapped.Canonical)
	assert.Equal(t, "reduced abundance", swapped.Effect, "free text is preserved")

	// Original untouched
	assert.Equal(t, "No tillage", orig.Practice)
	assert.Equal(t, Decrease, orig.Canonical)
}

func TestRecordSwapped_Twice(t *testing.T) {
	r := Record{Practice: "A", Contrast: "B", Canonical: Increase}
	assert.Equal(t, r, r.Swapped().Swapped())
}

func TestRecordPair_Trims(t *testing.T) {
	r := Record{Practice: "  No tillage ", Contrast: "\tConventional tillage"}
	assert.Equal(t, Pair{Practice: "No tillage", Contrast: "Conventional tillage"}, r.Pair())
}

func TestRecordFinalized(t *testing.T) {
	r := Record{Effect: "strongly increased", Canonical: Increase}
	assert.Equal(t, "increase", r.Finalized().Effect)

	unnormalized := Record{Effect: "unclear"}
	assert.Equal(t, "unclear", unnormalized.Finalized().Effect)
}

func TestColumnsWithDefaults(t *testing.T) {
	c := Columns{Practice: "land_management_practice_unified"}.WithDefaults()

	assert.Equal(t, "land_management_practice_unified", c.Practice)
	assert.Equal(t, "effect", c.Effect)
	assert.Equal(t, "contrasting_practice_unified", c.Contrast)
	assert.Equal(t, "unique_id", c.ExternalID)
}

func TestColumnsFieldFor(t *testing.T) {
	c := DefaultColumns()

	f, ok := c.FieldFor("actor_unified")
	require.True(t, ok)
	assert.Equal(t, FieldActor, f)

	_, ok = c.FieldFor("comment")
	assert.False(t, ok)
}

func TestColumnsDedupLabel(t *testing.T) {
	c := DefaultColumns()

	assert.Equal(t,
		"practice_unified+effect_normalized+property_unified+actor_unified+contrasting_practice_unified",
		c.DedupLabel(false))
	assert.Equal(t,
		"unique_id+practice_unified+effect_normalized+property_unified+actor_unified+contrasting_practice_unified",
		c.DedupLabel(true))
}
