package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/harmonize/internal/testutil"
)

// tillageFiles writes the tillage fixture and both allow-lists into a
// temp directory.
type tillageFiles struct {
	dir         string
	input       string
	contrast    string
	orientation string
}

func writeTillageFiles(t *testing.T) tillageFiles {
	t.Helper()
	dir := t.TempDir()
	return tillageFiles{
		dir:         dir,
		input:       testutil.WriteFile(t, dir, "extraction.csv", testutil.TillageCSV),
		contrast:    testutil.WriteFile(t, dir, "contrast.csv", testutil.TillageContrastCSV),
		orientation: testutil.WriteFile(t, dir, "orientation.csv", testutil.TillageOrientationCSV),
	}
}

func (f tillageFiles) outDir() string {
	return filepath.Join(f.dir, "out")
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
