package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

const runColumns = `id, seq, source, input_digest, result_digest, input_count, final_count, swapped, column_map, delimiter, ledger_version, tool_version`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var cols string
	if err := row.Scan(
		&r.ID, &r.Seq, &r.Source, &r.InputDigest, &r.ResultDigest,
		&r.InputCount, &r.FinalCount, &r.Swapped, &cols, &r.Delimiter,
		&r.LedgerVersion, &r.ToolVersion,
	); err != nil {
		return Run{}, err
	}
	c, err := unmarshalColumns(cols)
	if err != nil {
		return Run{}, err
	}
	r.Columns = c
	return r, nil
}

// ReadRun retrieves a run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs in seq order. limit <= 0 returns all runs.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// RunsByInputDigest returns every run whose inputs hashed to digest.
func (s *Store) RunsByInputDigest(ctx context.Context, digest string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_digest = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, digest)
}

// Conflicts returns stored runs with the given input digest whose result
// digest differs from resultDigest. A non-empty result means the pipeline
// did not reproduce an earlier output.
func (s *Store) Conflicts(ctx context.Context, inputDigest, resultDigest string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE input_digest = ? AND result_digest != ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, inputDigest, resultDigest)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadLossEvents returns a run's ledger in append order.
func (s *Store) ReadLossEvents(ctx context.Context, runID string) ([]ir.LossEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, column_name, type, count
		FROM loss_events
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query loss events: %w", err)
	}
	defer rows.Close()

	events := []ir.LossEvent{}
	for rows.Next() {
		var e ir.LossEvent
		var typ string
		if err := rows.Scan(&e.Step, &e.Column, &typ, &e.Count); err != nil {
			return nil, fmt.Errorf("scan loss event: %w", err)
		}
		e.Type = ir.Reason(typ)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loss events: %w", err)
	}
	return events, nil
}

// ReadStageCounts returns a run's per-step summary in step order.
func (s *Store) ReadStageCounts(ctx context.Context, runID string) ([]harmonize.SummaryRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT step, description, kept, removed
		FROM stage_counts
		WHERE run_id = ?
		ORDER BY CAST(SUBSTR(step, 5) AS INTEGER) ASC, step COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stage counts: %w", err)
	}
	defer rows.Close()

	out := []harmonize.SummaryRow{}
	for rows.Next() {
		var r harmonize.SummaryRow
		if err := rows.Scan(&r.Step, &r.Description, &r.Kept, &r.Removed); err != nil {
			return nil, fmt.Errorf("scan stage count: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage counts: %w", err)
	}
	return out, nil
}

// ReadLedger returns a run's ledger as a harmonize.Ledger.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadLedger(ctx context.Context, runID string) (harmonize.Ledger, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return harmonize.Ledger{}, err
		}
		return harmonize.Ledger{}, fmt.Errorf("read ledger: %w", err)
	}
	events, err := s.ReadLossEvents(ctx, runID)
	if err != nil {
		return harmonize.Ledger{}, err
	}
	return harmonize.NewLedger(events...), nil
}
