package cli

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// NewLogger returns a slog logger backed by a charm logger writing to w.
// Terminals get the styled text formatter, pipes get logfmt, and
// --format json gets JSON lines so diagnostics stay machine readable.
func NewLogger(w io.Writer, opts *RootOptions) *slog.Logger {
	level := charmlog.InfoLevel
	if opts.Verbose {
		level = charmlog.DebugLevel
	}
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	switch {
	case opts.Format == "json":
		logger.SetFormatter(charmlog.JSONFormatter)
	case isTerminal(w):
		logger.SetFormatter(charmlog.TextFormatter)
	default:
		logger.SetFormatter(charmlog.LogfmtFormatter)
	}
	return slog.New(logger)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
