package harmonize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/ir"
)

func TestParsePair(t *testing.T) {
	p, ok := ParsePair("  No tillage ; Conventional tillage ")
	require.True(t, ok)
	assert.Equal(t, ir.Pair{Practice: "No tillage", Contrast: "Conventional tillage"}, p)

	for _, bad := range []string{"No tillage", "a;b;c", ";b", "a; ", " ; "} {
		_, ok := ParsePair(bad)
		assert.False(t, ok, "entry %q", bad)
	}
}

func TestParsePairStrings_SkipsBlank(t *testing.T) {
	set, err := ParsePairStrings("contrast.csv", []string{"A;B", "", "  ", "NA", "B;A", "A;B"})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has(ir.Pair{Practice: "A", Contrast: "B"}))
	assert.True(t, set.Has(ir.Pair{Practice: "B", Contrast: "A"}))
}

func TestParsePairList_Malformed(t *testing.T) {
	_, err := ParsePairList("orientation.csv", []ListEntry{
		{Line: 2, Value: "A;B"},
		{Line: 3, Value: "C-D"},
	})
	require.Error(t, err)
	assert.True(t, IsConfigListMalformed(err))

	var he *Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "orientation.csv", he.Source)
	assert.Equal(t, 3, he.Line)
	assert.Contains(t, err.Error(), "orientation.csv:3")
}

func TestValidatePairs(t *testing.T) {
	allow := ir.NewPairSet(ir.Pair{Practice: "No tillage", Contrast: "Conventional tillage"})
	records := []ir.Record{
		{Row: 1, Practice: " No tillage", Contrast: "Conventional tillage  "},
		{Row: 2, Practice: "no tillage", Contrast: "conventional tillage"},
		{Row: 3, Practice: "Conventional tillage", Contrast: "No tillage"},
	}

	out := ValidatePairs(ir.Stage6, records, allow)

	require.Len(t, out.Kept, 1)
	assert.Equal(t, 1, out.Kept[0].Row)
	assert.Equal(t, " No tillage", out.Kept[0].Practice, "raw values are kept")
	assert.Equal(t, []ir.LossEvent{
		{Step: "Step6", Column: PairColumn, Type: ir.ReasonInvalidPair, Count: 2},
	}, out.Events)
	assert.Equal(t, "step6_removed", out.Discards[0].Name())
}

func TestValidatePairs_EmptyAllowList(t *testing.T) {
	records := []ir.Record{{Row: 1, Practice: "A", Contrast: "B"}}
	out := ValidatePairs(ir.Stage6, records, ir.NewPairSet())
	assert.Empty(t, out.Kept)
	assert.Equal(t, 1, out.Removed())
}
