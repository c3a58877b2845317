// Package testutil holds deterministic helpers shared by tests and the
// scenario harness.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/harmonize/internal/ir"
)

// Tillage practices used across fixtures.
const (
	NoTillage           = "No tillage"
	ConventionalTillage = "Conventional tillage"
)

// TillageContrast allows the tillage comparison in both directions.
func TillageContrast() ir.PairSet {
	return ir.NewPairSet(
		ir.Pair{Practice: NoTillage, Contrast: ConventionalTillage},
		ir.Pair{Practice: ConventionalTillage, Contrast: NoTillage},
	)
}

// TillageOrientation makes conventional tillage the canonical left side.
func TillageOrientation() ir.PairSet {
	return ir.NewPairSet(ir.Pair{Practice: ConventionalTillage, Contrast: NoTillage})
}

// TillageRecord returns a single-valued no-tillage relation.
func TillageRecord(row int, effect string) ir.Record {
	return ir.Record{
		Row:      row,
		Practice: NoTillage,
		Effect:   effect,
		Property: "abundance",
		Actor:    "bacteria",
		Contrast: ConventionalTillage,
	}
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// TillageCSV is a source table exercising every discard reason.
const TillageCSV = `practice_unified,effect,property_unified,actor_unified,contrasting_practice_unified,doi
No tillage,significantly decreased bacterial abundance,abundance,bacteria,Conventional tillage,10.1/a
"No tillage, Reduced tillage",increase,abundance,bacteria,Conventional tillage,10.1/b
No tillage,unclear,abundance,bacteria,Conventional tillage,10.1/c
No tillage,decrease,abundance,bacteria,Conventional tillage,10.1/d
No tillage,increase,abundance,bacteria,Ploughing,10.1/e
`

// TillageContrastCSV is the allow-list file matching TillageContrast.
const TillageContrastCSV = `pair
No tillage;Conventional tillage
Conventional tillage;No tillage
`

// TillageOrientationCSV is the allow-list file matching TillageOrientation.
const TillageOrientationCSV = `pair
Conventional tillage;No tillage
`
