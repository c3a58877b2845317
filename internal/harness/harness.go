package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
	"github.com/roach88/harmonize/internal/store"
	"github.com/roach88/harmonize/internal/testutil"
)

// Harness executes scenarios against the real pipeline and run ledger.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Input builds the pipeline input a scenario describes.
func (s *Scenario) Input() (harmonize.Input, error) {
	contrast, err := harmonize.ParsePairStrings("contrast_list", s.ContrastList)
	if err != nil {
		return harmonize.Input{}, err
	}
	orientation, err := harmonize.ParsePairStrings("orientation_list", s.OrientationList)
	if err != nil {
		return harmonize.Input{}, err
	}
	records := make([]ir.Record, len(s.Records))
	for i, r := range s.Records {
		if r.Row == 0 {
			r.Row = i + 1
		}
		records[i] = r
	}
	return harmonize.Input{
		Records:        records,
		Contrast:       contrast,
		Orientation:    orientation,
		Columns:        ir.DefaultColumns(),
		Delimiter:      s.Delimiter,
		WithExternalID: s.WithExternalID,
	}, nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with
// sequential run IDs so results are reproducible.
//
// Execution flow:
// 1. Build the input and run the pipeline
// 2. Run it a second time and compare result digests
// 3. Record the run and read its ledger back from the store
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("scenario")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	in, err := scenario.Input()
	if err != nil {
		return nil, fmt.Errorf("build input: %w", err)
	}

	res, err := harmonize.Run(in)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	h.logger.Debug("pipeline finished", "scenario", scenario.Name, "final", len(res.Final))

	result := NewResult()

	again, err := harmonize.Run(in)
	if err != nil {
		return nil, fmt.Errorf("rerun pipeline: %w", err)
	}
	first, err := res.Digest()
	if err != nil {
		return nil, err
	}
	second, err := again.Digest()
	if err != nil {
		return nil, err
	}
	if first != second {
		result.AddError(fmt.Sprintf("rerun produced result digest %s, first run %s", second, first))
	}

	run, err := h.store.RecordRun(ctx, scenario.Name, in, res)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	stored, err := h.store.ReadLossEvents(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if !slices.Equal(stored, res.Ledger.Events()) {
		result.AddError("stored ledger differs from the run's ledger")
	}

	result.RunID = run.ID
	result.InputDigest = run.InputDigest
	result.ResultDigest = run.ResultDigest
	result.Ledger = stored
	result.Summary = res.Summary
	result.Swapped = res.Swaps()
	for _, r := range res.Final {
		result.Final = append(result.Final, r.Finalized())
	}
	for _, b := range res.NonEmptyDiscards() {
		result.Discards[b.Name()] = len(b.Records)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
