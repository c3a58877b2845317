package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/harmonize/internal/config"
	"github.com/roach88/harmonize/internal/ir"
	"github.com/roach88/harmonize/internal/table"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ConfigPath string
	Overrides  config.Overrides
}

// ValidationIssue is one problem found by validate.
type ValidationIssue struct {
	Code    string `json:"code"`
	Source  string `json:"source,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid            bool              `json:"valid"`
	ContrastPairs    int               `json:"contrast_pairs"`
	OrientationPairs int               `json:"orientation_pairs"`
	Inputs           map[string]int    `json:"inputs,omitempty"`
	Errors           []ValidationIssue `json:"errors,omitempty"`
	Warnings         []ValidationIssue `json:"warnings,omitempty"`
}

// Warning codes.
const (
	WarnOrientationOutsideContrast = "W001" // orientation pair not allowed as a contrast
	WarnContrastUnoriented         = "W002" // contrast pair with neither direction oriented
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [input.csv]...",
		Short: "Validate configuration, allow-lists and input headers",
		Long: `Validate a run configuration without running the pipeline.

Checks the CUE configuration, parses both allow-lists, and verifies that
every given input table has the required columns and well-formed rows.
Orientation pairs outside the contrast list, and contrast pairs with no
orientation in either direction, are reported as warnings.

Exit codes:
  0 - Valid (warnings allowed)
  1 - Validation failed
  2 - Command error (config not found, etc.)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to CUE run configuration")
	cmd.Flags().StringVar(&opts.Overrides.ContrastList, "contrast-list", "", "path to the driver-contrast allow-list")
	cmd.Flags().StringVar(&opts.Overrides.OrientationList, "orientation-list", "", "path to the orientation allow-list")

	return cmd
}

func runValidate(opts *ValidateOptions, inputs []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		if config.IsConfigError(err) {
			return outputValidationErrors(formatter, ValidationResult{
				Errors: []ValidationIssue{{Code: errorCode(err), Source: opts.ConfigPath, Message: err.Error()}},
			})
		}
		return commandError(formatter, "failed to load config", err)
	}
	cfg = cfg.With(opts.Overrides)
	formatter.VerboseLog("Columns: %s, %s, %s, %s, %s", cfg.Columns.Practice, cfg.Columns.Effect,
		cfg.Columns.Property, cfg.Columns.Actor, cfg.Columns.Contrast)

	result := ValidationResult{Inputs: map[string]int{}}

	contrast := loadListForValidation(&result, "contrast list", cfg.ContrastList)
	orientation := loadListForValidation(&result, "orientation list", cfg.OrientationList)
	result.ContrastPairs = contrast.Len()
	result.OrientationPairs = orientation.Len()

	if contrast != nil && orientation != nil {
		for _, p := range orientation.Missing(contrast) {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:    WarnOrientationOutsideContrast,
				Source:  cfg.OrientationList,
				Message: fmt.Sprintf("orientation pair %q is not in the contrast list", p.String()),
			})
		}
		for _, p := range contrast.Unoriented(orientation) {
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:    WarnContrastUnoriented,
				Source:  cfg.ContrastList,
				Message: fmt.Sprintf("contrast pair %q has no orientation entry in either direction", p.String()),
			})
		}
	}

	for _, path := range inputs {
		formatter.VerboseLog("Checking input: %s", path)
		tbl, err := table.LoadRecords(path, cfg.Columns)
		if err != nil {
			result.Errors = append(result.Errors, ValidationIssue{Code: errorCode(err), Source: path, Message: err.Error()})
			continue
		}
		result.Inputs[path] = len(tbl.Records)
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	result.Valid = true
	return outputValidateSuccess(formatter, result)
}

// loadListForValidation parses an allow-list, recording any problem in
// result. It returns nil when the list is missing or malformed.
func loadListForValidation(result *ValidationResult, name, path string) ir.PairSet {
	if path == "" {
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    "E_MISSING_LIST",
			Message: name + " is not configured",
		})
		return nil
	}
	set, err := table.LoadPairList(path)
	if err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Code: errorCode(err), Source: path, Message: err.Error()})
		return nil
	}
	return set
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning %s: %s\n", warn.Code, warn.Message)
	}
	fmt.Fprintf(w, "✓ Configuration valid (%d contrast pairs, %d orientation pairs)\n",
		result.ContrastPairs, result.OrientationPairs)
	for _, path := range slices.Sorted(maps.Keys(result.Inputs)) {
		fmt.Fprintf(w, "✓ %s: %d records\n", path, result.Inputs[path])
	}
	return nil
}

// outputValidationErrors outputs validation failures.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		if e.Source != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", e.Source)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Code, e.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
