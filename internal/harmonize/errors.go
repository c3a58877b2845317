package harmonize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/harmonize/internal/ir"
)

// Error represents a structural problem that aborts a run before Stage 1.
//
// Structural errors include:
//   - Malformed input: required columns absent from the source table
//   - Malformed allow-list: an entry does not split into two tokens
//   - Invalid input: an Input the orchestrator cannot run (nil lists, empty delimiter)
//
// Per-record conditions are never reported as Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Source names the file or list the error was found in.
	Source string

	// Line is the 1-based line of the offending entry, when known.
	Line int

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes structural errors.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates required columns are absent or a row is short.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeConfigListMalformed indicates an allow-list entry is not "practice;contrast".
	ErrCodeConfigListMalformed ErrorCode = "CONFIG_LIST_MALFORMED"

	// ErrCodeInvalidInput indicates the pipeline input itself is unusable.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Source != "" && e.Line > 0 {
		return fmt.Sprintf("%s: %s (%s:%d)", e.Code, e.Message, e.Source, e.Line)
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Source)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMalformedInput returns true if err is a malformed source table error.
// Uses errors.As to handle wrapped errors.
func IsMalformedInput(err error) bool {
	return hasCode(err, ErrCodeMalformedInput)
}

// IsConfigListMalformed returns true if err is a malformed allow-list error.
// Uses errors.As to handle wrapped errors.
func IsConfigListMalformed(err error) bool {
	return hasCode(err, ErrCodeConfigListMalformed)
}

// IsInvalidInput returns true if err reports an unusable pipeline Input.
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrCodeInvalidInput)
}

func hasCode(err error, code ErrorCode) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}

// NewMissingColumnsError creates an Error listing absent required columns.
func NewMissingColumnsError(source string, missing []string) *Error {
	return &Error{
		Code:    ErrCodeMalformedInput,
		Message: fmt.Sprintf("required column(s) missing: %s", strings.Join(missing, ", ")),
		Source:  source,
		Details: map[string]string{"missing": strings.Join(missing, ",")},
	}
}

// NewShortRowError creates an Error for a row with fewer cells than the header.
func NewShortRowError(source string, line, got, want int) *Error {
	return &Error{
		Code:    ErrCodeMalformedInput,
		Message: fmt.Sprintf("row has %d field(s), header has %d", got, want),
		Source:  source,
		Line:    line,
	}
}

// NewListEntryError creates an Error for an allow-list entry that is not
// exactly two non-empty tokens separated by ";".
func NewListEntryError(source string, line int, entry string) *Error {
	return &Error{
		Code:    ErrCodeConfigListMalformed,
		Message: fmt.Sprintf("entry %q must be two non-empty tokens separated by %q", entry, ir.PairSeparator),
		Source:  source,
		Line:    line,
		Details: map[string]string{"entry": entry},
	}
}

// NewInvalidInputError creates an Error for an unusable Input.
func NewInvalidInputError(message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// RequireColumns checks that header contains every required column of cols.
// All missing columns are reported at once.
func RequireColumns(source string, header []string, cols ir.Columns) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range cols.Required() {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return NewMissingColumnsError(source, missing)
	}
	return nil
}
