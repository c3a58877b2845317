package store

import (
	"context"
	"fmt"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

// Run is one recorded pipeline run.
type Run struct {
	ID            string     `json:"id"`
	Seq           int64      `json:"seq"`
	Source        string     `json:"source"`
	InputDigest   string     `json:"input_digest"`
	ResultDigest  string     `json:"result_digest"`
	InputCount    int        `json:"input_count"`
	FinalCount    int        `json:"final_count"`
	Swapped       int        `json:"swapped"`
	Columns       ir.Columns `json:"columns"`
	Delimiter     string     `json:"delimiter"`
	LedgerVersion string     `json:"ledger_version"`
	ToolVersion   string     `json:"tool_version"`
}

// RecordRun stores a completed run with its ledger and stage counts in one
// transaction. The run gets a fresh ID and the next clock seq.
func (s *Store) RecordRun(ctx context.Context, source string, in harmonize.Input, res *harmonize.Result) (Run, error) {
	inputDigest, err := in.Digest()
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	resultDigest, err := res.Digest()
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	cols := in.Columns.WithDefaults()
	delim := in.Delimiter
	if delim == "" {
		delim = harmonize.DefaultDelimiter
	}

	run := Run{
		ID:            s.ids.Generate(),
		Seq:           s.clock.Next(),
		Source:        source,
		InputDigest:   inputDigest,
		ResultDigest:  resultDigest,
		InputCount:    len(in.Records),
		FinalCount:    len(res.Final),
		Swapped:       res.Swaps(),
		Columns:       cols,
		Delimiter:     delim,
		LedgerVersion: ir.LedgerVersion,
		ToolVersion:   ir.ToolVersion,
	}
	if err := s.WriteRun(ctx, run, res.Ledger.Events(), res.Summary); err != nil {
		return Run{}, err
	}
	return run, nil
}

// WriteRun inserts a run, its loss events and its stage counts.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same run twice
// is silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run, events []ir.LossEvent, summary []harmonize.SummaryRow) error {
	colsJSON, err := marshalColumns(run.Columns)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, input_digest, result_digest, input_count, final_count, swapped, column_map, delimiter, ledger_version, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Source,
		run.InputDigest,
		run.ResultDigest,
		run.InputCount,
		run.FinalCount,
		run.Swapped,
		colsJSON,
		run.Delimiter,
		run.LedgerVersion,
		run.ToolVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, e := range events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO loss_events (run_id, seq, step, column_name, type, count)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, run.ID, i+1, e.Step, e.Column, string(e.Type), e.Count)
		if err != nil {
			return fmt.Errorf("write loss event: %w", err)
		}
	}

	for _, row := range summary {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stage_counts (run_id, step, description, kept, removed)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, run.ID, row.Step, row.Description, row.Kept, row.Removed)
		if err != nil {
			return fmt.Errorf("write stage count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
