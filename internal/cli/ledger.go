package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
	"github.com/roach88/harmonize/internal/report"
	"github.com/roach88/harmonize/internal/store"
)

// LedgerOptions holds flags for the ledger command.
type LedgerOptions struct {
	*RootOptions
	Database    string
	Limit       int
	InputDigest string
}

// RunDetail is one recorded run with its ledger and stage counts.
type RunDetail struct {
	Run     store.Run              `json:"run"`
	Ledger  []ir.LossEvent         `json:"ledger"`
	Summary []harmonize.SummaryRow `json:"summary"`
}

// NewLedgerCommand creates the ledger command.
func NewLedgerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LedgerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ledger [run-id]",
		Short: "Inspect recorded runs and their loss ledgers",
		Long: `List runs recorded in a run ledger database, or show one run's
loss events and per-step counts.

Exit codes:
  0 - Success
  2 - Command error (database not found, unknown run, etc.)

Examples:
  harmonize ledger --db runs.db
  harmonize ledger --db runs.db --input-digest 3f2a...
  harmonize ledger --db runs.db 01920d6e-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run ledger (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")
	cmd.Flags().StringVar(&opts.InputDigest, "input-digest", "", "list only runs with this input digest")

	return cmd
}

func runLedger(opts *LedgerOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Opening creates a database, so refuse paths that do not exist.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if len(args) == 1 {
		return showRun(ctx, st, formatter, args[0])
	}
	return listRuns(ctx, st, formatter, opts)
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter, opts *LedgerOptions) error {
	var runs []store.Run
	var err error
	if opts.InputDigest != "" {
		runs, err = st.RunsByInputDigest(ctx, opts.InputDigest)
	} else {
		runs, err = st.ListRuns(ctx, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  seq=%d  %s  kept %d of %d  result=%s\n",
			r.ID, r.Seq, r.Source, r.FinalCount, r.InputCount, shortDigest(r.ResultDigest))
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, formatter *OutputFormatter, id string) error {
	run, err := st.ReadRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	events, err := st.ReadLossEvents(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ledger", err)
	}
	summary, err := st.ReadStageCounts(ctx, id)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stage counts", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunDetail{Run: run, Ledger: events, Summary: summary})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "  source:        %s\n", run.Source)
	fmt.Fprintf(w, "  input digest:  %s\n", run.InputDigest)
	fmt.Fprintf(w, "  result digest: %s\n", run.ResultDigest)
	fmt.Fprintf(w, "  records:       %d in, %d kept, %d swapped\n", run.InputCount, run.FinalCount, run.Swapped)
	fmt.Fprintln(w)
	if err := report.WriteSummary(w, summary); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return report.WriteLossBreakdown(w, harmonize.NewLedger(events...))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
