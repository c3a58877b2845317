package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/harmonize/internal/ir"
)

// marshalColumns converts a column mapping to canonical JSON TEXT.
func marshalColumns(c ir.Columns) (string, error) {
	data, err := ir.MarshalCanonical(map[string]string{
		"practice":    c.Practice,
		"effect":      c.Effect,
		"property":    c.Property,
		"actor":       c.Actor,
		"contrast":    c.Contrast,
		"external_id": c.ExternalID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal columns: %w", err)
	}
	return string(data), nil
}

// unmarshalColumns parses a stored column mapping.
func unmarshalColumns(s string) (ir.Columns, error) {
	var c ir.Columns
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return ir.Columns{}, fmt.Errorf("unmarshal columns: %w", err)
	}
	return c, nil
}
