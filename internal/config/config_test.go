package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/ir"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "harmonize.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
columns: {
	practice:    "land_management_practice_unified"
	contrast:    "contrasting_land_management_practice_unified"
	external_id: "UT (Unique ID)"
}
delimiter:        "|"
contrast_list:    "lists/contrast.csv"
orientation_list: "/abs/orientation.csv"
concurrency:      2
`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ir.Columns{
		Practice:   "land_management_practice_unified",
		Effect:     "effect",
		Property:   "property_unified",
		Actor:      "actor_unified",
		Contrast:   "contrasting_land_management_practice_unified",
		ExternalID: "UT (Unique ID)",
	}, cfg.Columns)
	assert.Equal(t, "|", cfg.Delimiter)
	assert.Equal(t, filepath.Join(dir, "lists", "contrast.csv"), cfg.ContrastList)
	assert.Equal(t, "/abs/orientation.csv", cfg.OrientationList)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Output)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultColumns(), cfg.Columns)
	assert.Equal(t, ",", cfg.Delimiter)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeNotFound, ce.Code)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`delimter: ";"`), "bad.cue")
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeInvalidField, ce.Code)
}

func TestParse_WrongType(t *testing.T) {
	_, err := Parse([]byte(`concurrency: "many"`), "bad.cue")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestParse_EmptyDelimiter(t *testing.T) {
	_, err := Parse([]byte(`delimiter: ""`), "bad.cue")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestParse_Syntax(t *testing.T) {
	_, err := Parse([]byte(`columns: {`), "bad.cue")
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeBuildFailed, ce.Code)
}

func TestWith(t *testing.T) {
	cfg := Default().With(Overrides{ContrastList: "c.csv", Concurrency: 8})
	assert.Equal(t, "c.csv", cfg.ContrastList)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "out", cfg.Output)
	assert.Equal(t, ",", cfg.Delimiter)
}
