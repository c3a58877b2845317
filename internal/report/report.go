// Package report writes the on-disk output layout of a harmonization run.
//
//	<root>/retained/<stem>.csv                final records, canonical effect
//	<root>/discarded/<bucket>.csv             one file per non-empty bucket
//	<root>/stages/stepN_kept.csv              kept set after each step
//	<root>/logs/<stem>_log.txt                human-readable summary
//	<root>/logs/<stem>_summary.csv            Step,Description,Kept,Removed
//	<root>/logs/<stem>_loss_breakdown.csv     step,column,type,count
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
	"github.com/roach88/harmonize/internal/table"
)

// Layout lists the files a Write produced.
type Layout struct {
	Root          string   `json:"root"`
	Retained      string   `json:"retained"`
	Discarded     []string `json:"discarded"`
	Stages        []string `json:"stages"`
	Log           string   `json:"log"`
	Summary       string   `json:"summary"`
	LossBreakdown string   `json:"loss_breakdown"`
}

// OutputName returns name with a ".csv" suffix, adding one when missing.
func OutputName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return name
	}
	return name + ".csv"
}

// Stem returns the base name of an output file without its extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RootFor returns the layout root for an output name under dir.
func RootFor(dir, name string) string {
	return filepath.Join(dir, Stem(name)+"_outputs")
}

// Write writes every output of res under root.
func Write(root, stem string, tbl *table.Table, res *harmonize.Result) (*Layout, error) {
	w := table.NewWriter(tbl)
	l := &Layout{
		Root:          root,
		Retained:      filepath.Join(root, "retained", stem+".csv"),
		Discarded:     []string{},
		Stages:        []string{},
		Log:           filepath.Join(root, "logs", stem+"_log.txt"),
		Summary:       filepath.Join(root, "logs", stem+"_summary.csv"),
		LossBreakdown: filepath.Join(root, "logs", stem+"_loss_breakdown.csv"),
	}

	if err := w.WriteFile(l.Retained, res.Final, table.Final); err != nil {
		return nil, fmt.Errorf("write retained: %w", err)
	}

	for _, s := range res.Stages {
		mode := table.Normalized
		if s.Stage == ir.Stage1 {
			mode = table.Raw
		}
		path := filepath.Join(root, "stages", s.Stage.Tag()+"_kept.csv")
		if err := w.WriteFile(path, s.Kept, mode); err != nil {
			return nil, fmt.Errorf("write stage %s: %w", s.Stage, err)
		}
		l.Stages = append(l.Stages, path)
	}

	for _, b := range res.NonEmptyDiscards() {
		mode := table.Normalized
		if b.Stage <= ir.Stage2 {
			mode = table.Raw
		}
		path := filepath.Join(root, "discarded", b.Name()+".csv")
		if err := w.WriteFile(path, b.Records, mode); err != nil {
			return nil, fmt.Errorf("write discard %s: %w", b.Name(), err)
		}
		l.Discarded = append(l.Discarded, path)
	}

	if err := writeFile(l.Log, func(f io.Writer) error {
		return WriteLog(f, res, l.Retained)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(l.Summary, func(f io.Writer) error {
		return WriteSummary(f, res.Summary)
	}); err != nil {
		return nil, err
	}
	if err := writeFile(l.LossBreakdown, func(f io.Writer) error {
		return WriteLossBreakdown(f, res.Ledger)
	}); err != nil {
		return nil, err
	}
	return l, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteSummary writes the per-step summary table.
func WriteSummary(w io.Writer, rows []harmonize.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Step", "Description", "Kept", "Removed"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Step, r.Description, strconv.Itoa(r.Kept), strconv.Itoa(r.Removed)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLossBreakdown writes the ledger sorted by step, column and type.
func WriteLossBreakdown(w io.Writer, l harmonize.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"step", "column", "type", "count"}); err != nil {
		return err
	}
	for _, e := range l.Sorted() {
		if err := cw.Write([]string{e.Step, e.Column, string(e.Type), strconv.Itoa(e.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLog writes the human-readable run summary.
func WriteLog(w io.Writer, res *harmonize.Result, retained string) error {
	var b strings.Builder
	b.WriteString("=== Harmonization Summary ===\n")
	for _, row := range res.Summary {
		fmt.Fprintf(&b, "%s: %s\n", row.Step, row.Description)
		fmt.Fprintf(&b, "  kept %d, removed %d", row.Kept, row.Removed)
		if details := breakdown(res, row.Step); details != "" {
			fmt.Fprintf(&b, " (%s)", details)
		}
		b.WriteByte('\n')
	}
	if retained != "" {
		fmt.Fprintf(&b, "Final output written to: %s\n", retained)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func breakdown(res *harmonize.Result, step string) string {
	if step == ir.Stage7.Step() {
		return fmt.Sprintf("swapped %d", res.Swaps())
	}
	var parts []string
	for _, e := range res.Ledger.Events() {
		if e.Step == step {
			parts = append(parts, fmt.Sprintf("%s %d", e.Type, e.Count))
		}
	}
	return strings.Join(parts, ", ")
}
