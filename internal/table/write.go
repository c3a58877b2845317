package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/harmonize/internal/ir"
)

// Mode selects how records are rendered back into source columns.
type Mode int

const (
	// Raw writes the source schema with the free-text effect.
	Raw Mode = iota

	// Normalized appends an effect_normalized column holding Canonical.
	Normalized

	// Final replaces the effect column by the canonical token.
	Final
)

// Writer renders records in the schema of a source table.
type Writer struct {
	Header  []string
	Columns ir.Columns
}

// NewWriter returns a Writer for t's schema.
func NewWriter(t *Table) *Writer {
	return &Writer{Header: t.Header, Columns: t.Columns}
}

func (w *Writer) header(mode Mode) []string {
	h := append([]string(nil), w.Header...)
	if mode == Normalized {
		h = append(h, ir.EffectNormalizedColumn)
	}
	return h
}

func (w *Writer) row(r ir.Record, mode Mode) []string {
	if mode == Final {
		r = r.Finalized()
	}
	out := make([]string, 0, len(w.Header)+1)
	for _, h := range w.Header {
		if f, ok := w.Columns.FieldFor(h); ok {
			out = append(out, r.Get(f))
			continue
		}
		out = append(out, r.Extra[h])
	}
	if mode == Normalized {
		out = append(out, string(r.Canonical))
	}
	return out
}

// Write writes a header and one row per record to dst.
func (w *Writer) Write(dst io.Writer, records []ir.Record, mode Mode) error {
	cw := csv.NewWriter(dst)
	if err := cw.Write(w.header(mode)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(w.row(r, mode)); err != nil {
			return fmt.Errorf("write row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes records to path, creating parent directories.
func (w *Writer) WriteFile(path string, records []ir.Record, mode Mode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := w.Write(f, records, mode); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
