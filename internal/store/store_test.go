package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(t *testing.T) (harmonize.Input, *harmonize.Result) {
	t.Helper()
	in := harmonize.Input{
		Records: []ir.Record{
			{Row: 1, Practice: "No tillage", Effect: "decrease", Property: "abundance", Actor: "bacteria", Contrast: "Conventional tillage"},
			{Row: 2, Practice: "No tillage", Effect: "unclear", Property: "abundance", Actor: "bacteria", Contrast: "Conventional tillage"},
		},
		Contrast:    ir.NewPairSet(ir.Pair{Practice: "No tillage", Contrast: "Conventional tillage"}),
		Orientation: ir.NewPairSet(ir.Pair{Practice: "Conventional tillage", Contrast: "No tillage"}),
	}
	res, err := harmonize.Run(in)
	require.NoError(t, err)
	return in, res
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"user_version": "2",
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		s.Close()
	}
}

func TestRecordRun(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("run-1")))
	ctx := context.Background()
	in, res := sampleRun(t)

	run, err := s.RecordRun(ctx, "in.csv", in, res)
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, 2, run.InputCount)
	assert.Equal(t, 1, run.FinalCount)
	assert.Equal(t, 1, run.Swapped)
	assert.Equal(t, ",", run.Delimiter)

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)
	assert.Equal(t, ir.DefaultColumns(), got.Columns)

	events, err := s.ReadLossEvents(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Ledger.Events(), events)

	counts, err := s.ReadStageCounts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Summary, counts)

	ledger, err := s.ReadLedger(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Ledger.Sorted(), ledger.Sorted())
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = s.ReadLedger(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, res := sampleRun(t)
	run := Run{ID: "r", Seq: 1, Columns: ir.DefaultColumns(), Delimiter: ","}

	require.NoError(t, s.WriteRun(ctx, run, res.Ledger.Events(), res.Summary))
	require.NoError(t, s.WriteRun(ctx, run, res.Ledger.Events(), res.Summary))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	events, err := s.ReadLossEvents(ctx, "r")
	require.NoError(t, err)
	assert.Len(t, events, res.Ledger.Len())
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestClock_ResumesAfterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()
	in, res := sampleRun(t)

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.RecordRun(ctx, "a", in, res)
	require.NoError(t, err)
	_, err = s1.RecordRun(ctx, "b", in, res)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, int64(2), s2.Clock().Current())

	run, err := s2.RecordRun(ctx, "c", in, res)
	require.NoError(t, err)
	assert.Equal(t, int64(3), run.Seq)

	runs, err := s2.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{runs[0].Source, runs[1].Source, runs[2].Source})

	limited, err := s2.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestConflicts(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("r1", "r2", "r3")))
	ctx := context.Background()
	in, res := sampleRun(t)

	first, err := s.RecordRun(ctx, "in.csv", in, res)
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, "in.csv", in, res)
	require.NoError(t, err)

	same, err := s.RunsByInputDigest(ctx, first.InputDigest)
	require.NoError(t, err)
	assert.Len(t, same, 2)

	conflicts, err := s.Conflicts(ctx, first.InputDigest, first.ResultDigest)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// A forged run with a different result for the same input.
	forged := first
	forged.ID = "forged"
	forged.Seq = s.Clock().Next()
	forged.ResultDigest = "0000"
	require.NoError(t, s.WriteRun(ctx, forged, nil, nil))

	conflicts, err = s.Conflicts(ctx, first.InputDigest, first.ResultDigest)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "forged", conflicts[0].ID)
}

func TestRecordRun_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	in, res := sampleRun(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordRun(ctx, "in.csv", in, res)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 8)
	for i, r := range runs {
		assert.Equal(t, int64(i+1), r.Seq)
	}
}

func TestFixedGenerator_Exhausted(t *testing.T) {
	g := NewFixedGenerator("a")
	assert.Equal(t, "a", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestClock(t *testing.T) {
	c := NewClockAt(5)
	assert.Equal(t, int64(6), c.Next())
	assert.Equal(t, int64(6), c.Current())
	assert.Equal(t, int64(1), NewClock().Next())
}

func TestQuery_LossEventRows(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(NewFixedGenerator("run-1")))
	ctx := context.Background()
	in, res := sampleRun(t)
	_, err := s.RecordRun(ctx, "in.csv", in, res)
	require.NoError(t, err)

	rows, err := s.Query(ctx, `SELECT step, SUM(count) FROM loss_events WHERE run_id = ? GROUP BY step ORDER BY step`, "run-1")
	require.NoError(t, err)
	defer rows.Close()

	totals := map[string]int{}
	for rows.Next() {
		var step string
		var n int
		require.NoError(t, rows.Scan(&step, &n))
		totals[step] = n
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, 1, totals["Step2"])
	assert.Equal(t, 0, totals["Step8"])
}

func TestOpen_MigratesOlderLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(`DROP INDEX idx_stage_counts_step`)
	require.NoError(t, err)
	_, err = s.db.Exec(`PRAGMA user_version = 1`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "2", version)

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_stage_counts_step'`).Scan(&n))
	assert.Equal(t, 1, n)
}
