package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for digests.
// Version suffix enables future algorithm migration.
const (
	DomainInput  = "harmonize/input/v1"
	DomainResult = "harmonize/result/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DigestInput describes everything a pipeline run depends on.
type DigestInput struct {
	Records        []Record
	Contrast       PairSet
	Orientation    PairSet
	Columns        Columns
	Delimiter      string
	WithExternalID bool
}

// InputDigest computes the content digest of a run's inputs.
// Two runs with the same InputDigest must produce the same ResultDigest.
func InputDigest(in DigestInput) (string, error) {
	obj := map[string]any{
		"records":          recordsToCanonical(in.Records),
		"contrast":         pairsToCanonical(in.Contrast),
		"orientation":      pairsToCanonical(in.Orientation),
		"columns":          columnsToCanonical(in.Columns),
		"delimiter":        in.Delimiter,
		"with_external_id": in.WithExternalID,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("InputDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainInput, canonical), nil
}

// ResultDigest computes the content digest of a run's final records and ledger.
func ResultDigest(final []Record, events []LossEvent) (string, error) {
	ledger := make([]any, len(events))
	for i, e := range events {
		ledger[i] = map[string]any{
			"step":   e.Step,
			"column": e.Column,
			"type":   e.Type,
			"count":  e.Count,
		}
	}
	obj := map[string]any{
		"final":  recordsToCanonical(final),
		"ledger": ledger,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustResultDigest is like ResultDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustResultDigest(final []Record, events []LossEvent) string {
	d, err := ResultDigest(final, events)
	if err != nil {
		panic(err)
	}
	return d
}

func recordsToCanonical(records []Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		obj := map[string]any{
			"row":         r.Row,
			"practice":    r.Practice,
			"effect":      r.Effect,
			"property":    r.Property,
			"actor":       r.Actor,
			"contrast":    r.Contrast,
			"external_id": r.ExternalID,
			"canonical":   r.Canonical,
		}
		if len(r.Extra) > 0 {
			obj["extra"] = r.Extra
		}
		out[i] = obj
	}
	return out
}

func pairsToCanonical(s PairSet) []any {
	pairs := s.Pairs()
	out := make([]any, len(pairs))
	for i, p := range pairs {
		out[i] = []string{p.Practice, p.Contrast}
	}
	return out
}

func columnsToCanonical(c Columns) map[string]any {
	return map[string]any{
		"practice":    c.Practice,
		"effect":      c.Effect,
		"property":    c.Property,
		"actor":       c.Actor,
		"contrast":    c.Contrast,
		"external_id": c.ExternalID,
	}
}
