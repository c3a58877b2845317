// Package table reads and writes the CSV tables that feed and come out of
// the harmonization pipeline.
//
// A source table has a header row. The columns mapped by ir.Columns become
// Record fields; every other column rides along in Record.Extra and is
// written back unchanged.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

// Table is a parsed source table.
type Table struct {
	// Source is the file name or label the table was read from.
	Source string

	// Header is the source header in file order.
	Header []string

	Columns ir.Columns
	Records []ir.Record

	// HasExternalID is true when Header contains Columns.ExternalID.
	HasExternalID bool
}

// newReader wraps r so that an optional UTF-8 or UTF-16 byte order mark is
// consumed and the content is decoded as UTF-8.
func newReader(r io.Reader) *csv.Reader {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.FieldsPerRecord = -1
	return cr
}

// ReadRecords parses a source table from r. source labels errors.
func ReadRecords(r io.Reader, source string, cols ir.Columns) (*Table, error) {
	cols = cols.WithDefaults()
	cr := newReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, harmonize.NewMissingColumnsError(source, cols.Required())
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", source, err)
	}
	header = append([]string(nil), header...)

	if err := harmonize.RequireColumns(source, header, cols); err != nil {
		return nil, err
	}

	t := &Table{
		Source:  source,
		Header:  header,
		Columns: cols,
		Records: []ir.Record{},
	}
	fields := make([]ir.Field, len(header))
	mapped := make([]bool, len(header))
	for i, h := range header {
		fields[i], mapped[i] = cols.FieldFor(h)
		if mapped[i] && fields[i] == ir.FieldExternalID {
			t.HasExternalID = true
		}
	}

	for row := 1; ; row++ {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		if len(values) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, harmonize.NewShortRowError(source, line, len(values), len(header))
		}
		t.Records = append(t.Records, toRecord(row, values, header, fields, mapped))
	}
	return t, nil
}

// toRecord maps one data row onto a Record. NA tokens and blank cells
// become empty strings in every column, passthrough ones included.
func toRecord(row int, values, header []string, fields []ir.Field, mapped []bool) ir.Record {
	r := ir.Record{Row: row}
	for i, v := range values {
		if ir.IsMissing(v) {
			v = ""
		}
		if !mapped[i] {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			r.Extra[header[i]] = v
			continue
		}
		switch fields[i] {
		case ir.FieldPractice:
			r.Practice = v
		case ir.FieldEffect:
			r.Effect = v
		case ir.FieldProperty:
			r.Property = v
		case ir.FieldActor:
			r.Actor = v
		case ir.FieldContrast:
			r.Contrast = v
		case ir.FieldExternalID:
			r.ExternalID = v
		}
	}
	return r
}

// LoadRecords reads the source table at path.
func LoadRecords(path string, cols ir.Columns) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source table: %w", err)
	}
	defer f.Close()
	return ReadRecords(f, path, cols)
}

// ReadPairList parses an allow-list table: a header row, then one
// "practice;contrast" value per row in the first column. Other columns are
// ignored; blank and NA cells are skipped.
func ReadPairList(r io.Reader, source string) (ir.PairSet, error) {
	cr := newReader(r)
	var entries []harmonize.ListEntry
	for first := true; ; first = false {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		if first || len(values) == 0 {
			continue
		}
		line, _ := cr.FieldPos(0)
		entries = append(entries, harmonize.ListEntry{Line: line, Value: values[0]})
	}
	return harmonize.ParsePairList(source, entries)
}

// LoadPairList reads the allow-list at path.
func LoadPairList(path string) (ir.PairSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open allow-list: %w", err)
	}
	defer f.Close()
	return ReadPairList(f, path)
}
