// Package config loads run configuration from a CUE file.
//
// A configuration file looks like:
//
//	columns: {
//		practice: "land_management_practice_unified"
//		contrast: "contrasting_land_management_practice_unified"
//		external_id: "UT (Unique ID)"
//	}
//	delimiter:        ","
//	contrast_list:    "lists/contrast.csv"
//	orientation_list: "lists/orientation.csv"
//	output:           "out"
//	database:         "harmonize.db"
//
// Every field is optional. Relative paths resolve against the directory of
// the configuration file. The file is unified with an embedded closed
// schema, so unknown fields and wrong types are reported with positions.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/harmonize/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Config is a resolved run configuration.
type Config struct {
	// Path is the file the configuration was loaded from, empty for Default.
	Path string

	Columns         ir.Columns
	Delimiter       string
	ContrastList    string
	OrientationList string

	// Output is the directory receiving <stem>_outputs.
	Output string

	// Database is the run ledger path. Empty disables recording.
	Database    string
	Concurrency int
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Columns:     ir.DefaultColumns(),
		Delimiter:   ",",
		Output:      "out",
		Concurrency: 4,
	}
}

// Overrides holds command-line values. Empty fields leave the
// configuration unchanged.
type Overrides struct {
	ContrastList    string
	OrientationList string
	Output          string
	Database        string
	Delimiter       string
	Concurrency     int
}

// With returns c with every non-empty override applied.
func (c Config) With(o Overrides) Config {
	if o.ContrastList != "" {
		c.ContrastList = o.ContrastList
	}
	if o.OrientationList != "" {
		c.OrientationList = o.OrientationList
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Database != "" {
		c.Database = o.Database
	}
	if o.Delimiter != "" {
		c.Delimiter = o.Delimiter
	}
	if o.Concurrency > 0 {
		c.Concurrency = o.Concurrency
	}
	return c
}

// Error codes for configuration problems.
const (
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeInvalidField = "E201" // Field violates the schema
)

// ConfigError is a configuration problem, positioned when CUE knows where.
type ConfigError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Load reads and validates the CUE file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, &ConfigError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return Config{}, err
	}
	return cfg.resolve(filepath.Dir(path)), nil
}

// Parse decodes configuration source. filename is used in positions only;
// paths are left as written.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, formatCUEError(ErrCodeBuildFailed, err)
	}
	v := schema.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(ErrCodeInvalidField, err)
	}

	cfg := Default()
	var cols ir.Columns
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{"columns.practice", &cols.Practice},
		{"columns.effect", &cols.Effect},
		{"columns.property", &cols.Property},
		{"columns.actor", &cols.Actor},
		{"columns.contrast", &cols.Contrast},
		{"columns.external_id", &cols.ExternalID},
		{"delimiter", &cfg.Delimiter},
		{"contrast_list", &cfg.ContrastList},
		{"orientation_list", &cfg.OrientationList},
		{"output", &cfg.Output},
		{"database", &cfg.Database},
	} {
		if err := stringField(v, f.path, f.dst); err != nil {
			return Config{}, err
		}
	}
	cfg.Columns = cols.WithDefaults()

	if cv := v.LookupPath(cue.ParsePath("concurrency")); cv.Exists() {
		n, err := cv.Int64()
		if err != nil {
			return Config{}, &ConfigError{Code: ErrCodeInvalidField, Field: "concurrency", Message: err.Error(), Pos: cv.Pos()}
		}
		cfg.Concurrency = int(n)
	}
	cfg.Path = filename
	return cfg, nil
}

// stringField copies the string at path into dst when present.
func stringField(v cue.Value, path string, dst *string) error {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil
	}
	s, err := fv.String()
	if err != nil {
		return &ConfigError{Code: ErrCodeInvalidField, Field: path, Message: err.Error(), Pos: fv.Pos()}
	}
	*dst = s
	return nil
}

// resolve makes relative file paths relative to dir.
func (c Config) resolve(dir string) Config {
	for _, p := range []*string{&c.ContrastList, &c.OrientationList, &c.Output, &c.Database} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return c
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	ce := &ConfigError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
