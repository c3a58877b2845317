package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/config"
	"github.com/roach88/harmonize/internal/testutil"
)

func newValidate() *RootOptions {
	return &RootOptions{Format: "text"}
}

func TestValidate_Valid(t *testing.T) {
	f := writeTillageFiles(t)

	out, err := execute(NewValidateCommand(newValidate()),
		f.input,
		"--contrast-list", f.contrast,
		"--orientation-list", f.orientation,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid (2 contrast pairs, 1 orientation pairs)")
	assert.Contains(t, out, "✓ "+f.input+": 5 records")
	assert.NotContains(t, out, "warning")
}

func TestValidate_Warnings(t *testing.T) {
	f := writeTillageFiles(t)
	contrast := testutil.WriteFile(t, f.dir, "contrast_wide.csv",
		"pair\nNo tillage;Conventional tillage\nCover crops;Bare fallow\n")
	orientation := testutil.WriteFile(t, f.dir, "orientation_wide.csv",
		"pair\nConventional tillage;No tillage\nMulching;No mulching\n")

	out, err := execute(NewValidateCommand(newValidate()),
		"--contrast-list", contrast,
		"--orientation-list", orientation,
	)
	require.NoError(t, err)
	assert.Contains(t, out, `warning W001: orientation pair "Conventional tillage;No tillage" is not in the contrast list`)
	assert.Contains(t, out, `warning W001: orientation pair "Mulching;No mulching" is not in the contrast list`)
	assert.Contains(t, out, `warning W002: contrast pair "Cover crops;Bare fallow" has no orientation entry in either direction`)
	assert.NotContains(t, out, `"No tillage;Conventional tillage" has no orientation`)
	assert.Contains(t, out, "✓ Configuration valid")
}

func TestValidate_MissingList(t *testing.T) {
	f := writeTillageFiles(t)

	out, err := execute(NewValidateCommand(newValidate()), "--contrast-list", f.contrast)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E_MISSING_LIST: orientation list is not configured")
}

func TestValidate_MalformedList(t *testing.T) {
	f := writeTillageFiles(t)
	bad := testutil.WriteFile(t, f.dir, "bad.csv", "pair\nNo tillage;Conventional tillage\nploughing\n")

	out, err := execute(NewValidateCommand(newValidate()),
		"--contrast-list", bad,
		"--orientation-list", f.orientation,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, bad)
	assert.Contains(t, out, "CONFIG_LIST_MALFORMED")
}

func TestValidate_MissingColumns(t *testing.T) {
	f := writeTillageFiles(t)
	input := testutil.WriteFile(t, f.dir, "narrow.csv", "practice_unified,effect\nNo tillage,increase\n")

	out, err := execute(NewValidateCommand(newValidate()),
		input,
		"--contrast-list", f.contrast,
		"--orientation-list", f.orientation,
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "MALFORMED_INPUT")
}

func TestValidate_ConfigError(t *testing.T) {
	f := writeTillageFiles(t)
	cfg := testutil.WriteFile(t, f.dir, "harmonize.cue", `concurrency: "many"`)

	out, err := execute(NewValidateCommand(newValidate()), "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, config.ErrCodeInvalidField)
}

func TestValidate_JSON(t *testing.T) {
	f := writeTillageFiles(t)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}),
		f.input,
		"--contrast-list", f.contrast,
		"--orientation-list", f.orientation,
	)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.ContrastPairs)
	assert.Equal(t, 1, resp.Data.OrientationPairs)
	assert.Equal(t, map[string]int{f.input: 5}, resp.Data.Inputs)
}

func TestValidate_JSONFailure(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_MISSING_LIST", resp.Error.Code)
}
