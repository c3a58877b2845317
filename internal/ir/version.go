package ir

// Version constants stored alongside every persisted run.
const (
	// LedgerVersion is the version of the ledger and stage vocabulary.
	LedgerVersion = "1"

	// ToolVersion is the harmonize release version.
	ToolVersion = "0.3.0"
)
