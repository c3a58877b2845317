package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/harmonize/internal/config"
	"github.com/roach88/harmonize/internal/harmonize"
	"github.com/roach88/harmonize/internal/ir"
	"github.com/roach88/harmonize/internal/report"
	"github.com/roach88/harmonize/internal/store"
	"github.com/roach88/harmonize/internal/table"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Name       string // retained file name, ".csv" added when missing
	Overrides  config.Overrides

	// IDs overrides the run ID generator (for testing).
	// If nil, the store uses UUIDv7.
	IDs store.IDGenerator
}

// RunReport is the outcome of harmonizing one input table.
type RunReport struct {
	Input        string                 `json:"input"`
	Output       string                 `json:"output"`
	RunID        string                 `json:"run_id,omitempty"`
	InputDigest  string                 `json:"input_digest"`
	ResultDigest string                 `json:"result_digest"`
	InputCount   int                    `json:"input_count"`
	FinalCount   int                    `json:"final_count"`
	Swapped      int                    `json:"swapped"`
	Summary      []harmonize.SummaryRow `json:"summary"`
	Ledger       []ir.LossEvent         `json:"ledger"`
	Layout       *report.Layout         `json:"layout"`

	// Conflicts lists earlier runs with the same input digest and a
	// different result digest.
	Conflicts []string `json:"conflicts,omitempty"`
}

// DefaultOutputName names the retained file when -o is not given.
const DefaultOutputName = "filtered_output.csv"

// job is one input table on its way through the pipeline.
type job struct {
	path  string
	name  string
	table *table.Table
	input harmonize.Input
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <input.csv>...",
		Short: "Harmonize one or more input tables",
		Long: `Run the eight-stage harmonization pipeline over input tables.

Each input produces <out-dir>/<stem>_outputs/ with retained/, discarded/,
stages/ and logs/ subdirectories. With --db, the run and its loss ledger
are recorded and compared against earlier runs of the same input.

With a single input, -o names the retained file (".csv" is added when
missing). With several inputs, each output is named <input-stem>_<name>.

Exit codes:
  0 - Success
  2 - Command error (malformed input, bad config, unreadable files)

Examples:
  harmonize run extraction.csv --contrast-list contrasts.csv --orientation-list orientation.csv -o filtered
  harmonize run --config harmonize.cue a.csv b.csv --db runs.db`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarmonize(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to CUE run configuration")
	cmd.Flags().StringVar(&opts.Overrides.ContrastList, "contrast-list", "", "path to the driver-contrast allow-list")
	cmd.Flags().StringVar(&opts.Overrides.OrientationList, "orientation-list", "", "path to the orientation allow-list")
	cmd.Flags().StringVarP(&opts.Name, "output", "o", DefaultOutputName, "retained output file name")
	cmd.Flags().StringVar(&opts.Overrides.Output, "out-dir", "", "directory receiving <stem>_outputs (default \"out\")")
	cmd.Flags().StringVar(&opts.Overrides.Database, "db", "", "path to SQLite run ledger (optional)")
	cmd.Flags().StringVar(&opts.Overrides.Delimiter, "delimiter", "", "multi-value delimiter (default \",\")")
	cmd.Flags().IntVar(&opts.Overrides.Concurrency, "concurrency", 0, "inputs processed in parallel")

	return cmd
}

func runHarmonize(opts *RunOptions, inputs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return commandError(formatter, "failed to load config", err)
	}
	cfg = cfg.With(opts.Overrides)
	if cfg.ContrastList == "" || cfg.OrientationList == "" {
		return commandError(formatter, "missing allow-list",
			errors.New("both --contrast-list and --orientation-list are required"))
	}

	names, err := outputNames(opts.Name, inputs)
	if err != nil {
		return commandError(formatter, "conflicting inputs", err)
	}

	contrast, err := table.LoadPairList(cfg.ContrastList)
	if err != nil {
		return commandError(formatter, "failed to load contrast list", err)
	}
	orientation, err := table.LoadPairList(cfg.OrientationList)
	if err != nil {
		return commandError(formatter, "failed to load orientation list", err)
	}
	slog.Debug("allow-lists loaded", "contrast", contrast.Len(), "orientation", orientation.Len())
	for _, p := range orientation.Missing(contrast) {
		slog.Warn("orientation pair not in contrast list", "pair", p.String())
	}

	jobs := make([]job, 0, len(inputs))
	batch := make([]harmonize.Input, 0, len(inputs))
	for i, path := range inputs {
		tbl, err := table.LoadRecords(path, cfg.Columns)
		if err != nil {
			return commandError(formatter, "failed to load input", err)
		}
		in := harmonize.Input{
			Records:        tbl.Records,
			Contrast:       contrast,
			Orientation:    orientation,
			Columns:        cfg.Columns,
			Delimiter:      cfg.Delimiter,
			WithExternalID: tbl.HasExternalID,
		}
		jobs = append(jobs, job{path: path, name: names[i], table: tbl, input: in})
		batch = append(batch, in)
		slog.Debug("input loaded", "path", path, "records", len(tbl.Records), "external_id", tbl.HasExternalID)
	}

	results, err := harmonize.RunBatch(ctx, batch, cfg.Concurrency)
	if err != nil {
		return commandError(formatter, "pipeline failed", err)
	}

	var st *store.Store
	if cfg.Database != "" {
		var storeOpts []store.Option
		if opts.IDs != nil {
			storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
		}
		st, err = store.Open(cfg.Database, storeOpts...)
		if err != nil {
			return commandError(formatter, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	reports := make([]RunReport, 0, len(jobs))
	for i, j := range jobs {
		rep, err := finishJob(ctx, st, cfg.Output, j, results[i])
		if err != nil {
			return commandError(formatter, fmt.Sprintf("failed to write outputs for %s", j.path), err)
		}
		slog.Info("harmonized", "input", j.path, "kept", rep.FinalCount, "of", rep.InputCount, "outputs", rep.Layout.Root)
		reports = append(reports, rep)
	}

	if opts.Format == "json" {
		return formatter.Success(reports)
	}
	return outputRunText(formatter, jobs, results, reports)
}

// finishJob writes the output layout and, when st is set, records the run.
func finishJob(ctx context.Context, st *store.Store, outDir string, j job, res *harmonize.Result) (RunReport, error) {
	root := report.RootFor(outDir, j.name)
	layout, err := report.Write(root, report.Stem(j.name), j.table, res)
	if err != nil {
		return RunReport{}, err
	}

	rep := RunReport{
		Input:      j.path,
		Output:     layout.Retained,
		InputCount: len(j.input.Records),
		FinalCount: len(res.Final),
		Swapped:    res.Swaps(),
		Summary:    res.Summary,
		Ledger:     res.Ledger.Events(),
		Layout:     layout,
	}

	if st == nil {
		if rep.InputDigest, err = j.input.Digest(); err != nil {
			return RunReport{}, err
		}
		if rep.ResultDigest, err = res.Digest(); err != nil {
			return RunReport{}, err
		}
		return rep, nil
	}

	run, err := st.RecordRun(ctx, j.path, j.input, res)
	if err != nil {
		return RunReport{}, err
	}
	rep.RunID = run.ID
	rep.InputDigest = run.InputDigest
	rep.ResultDigest = run.ResultDigest

	conflicts, err := st.Conflicts(ctx, run.InputDigest, run.ResultDigest)
	if err != nil {
		return RunReport{}, err
	}
	for _, c := range conflicts {
		rep.Conflicts = append(rep.Conflicts, c.ID)
		slog.Warn("result differs from an earlier run of the same input",
			"run", run.ID, "earlier", c.ID, "earlier_digest", c.ResultDigest)
	}
	return rep, nil
}

// outputName picks the retained file name for an input.
func outputName(name, input string, inputs int) string {
	if name == "" {
		name = DefaultOutputName
	}
	if inputs == 1 {
		return report.OutputName(name)
	}
	return report.OutputName(report.Stem(input) + "_" + report.Stem(name))
}

// outputNames picks the retained file name of every input. Inputs whose
// names share a stem would write the same layout root, so they are rejected.
func outputNames(name string, inputs []string) ([]string, error) {
	names := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, path := range inputs {
		names[i] = outputName(name, path, len(inputs))
		stem := report.Stem(names[i])
		if prev, ok := seen[stem]; ok {
			return nil, fmt.Errorf("%s and %s both write %s_outputs", prev, path, stem)
		}
		seen[stem] = path
	}
	return names, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// outputRunText prints the summary log of every input.
func outputRunText(formatter *OutputFormatter, jobs []job, results []*harmonize.Result, reports []RunReport) error {
	w := formatter.Writer
	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if len(jobs) > 1 {
			fmt.Fprintf(w, "# %s\n", jobs[i].path)
		}
		if err := report.WriteLog(w, results[i], rep.Output); err != nil {
			return err
		}
		if rep.RunID != "" {
			fmt.Fprintf(w, "Run recorded: %s\n", rep.RunID)
		}
		if len(rep.Conflicts) > 0 {
			fmt.Fprintf(w, "Warning: result differs from %d earlier run(s) of this input\n", len(rep.Conflicts))
		}
	}
	return nil
}

// commandError reports err through the formatter and returns an
// ExitCommandError.
func commandError(formatter *OutputFormatter, message string, err error) error {
	_ = formatter.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), errorDetails(err))
	return WrapExitError(ExitCommandError, message, err)
}

// errorCode maps typed errors to the code reported in CLI output.
func errorCode(err error) string {
	var he *harmonize.Error
	if errors.As(err, &he) {
		return string(he.Code)
	}
	var ce *config.ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "E_COMMAND"
}

func errorDetails(err error) any {
	var he *harmonize.Error
	if errors.As(err, &he) && he.Details != nil {
		return he.Details
	}
	return nil
}
