package ir

import "strings"

// Field identifies one of the categorical fields of a Record.
type Field string

const (
	FieldPractice   Field = "practice"
	FieldEffect     Field = "effect"
	FieldProperty   Field = "property"
	FieldActor      Field = "actor"
	FieldContrast   Field = "contrast"
	FieldExternalID Field = "external_id"
)

// EffectNormalizedColumn names the derived canonical effect in stage tables
// and in the dedup ledger column label.
const EffectNormalizedColumn = "effect_normalized"

// Record is one extracted practice-effect-actor relation.
//
// Record is a value type. Stages never modify a Record they received; they
// build a new one (see WithCanonical and Swapped). Extra is shared between
// copies and must be treated as read-only.
type Record struct {
	Row        int               `json:"row" yaml:"row,omitempty"`
	Practice   string            `json:"practice" yaml:"practice"`
	Effect     string            `json:"effect" yaml:"effect"`
	Property   string            `json:"property" yaml:"property"`
	Actor      string            `json:"actor" yaml:"actor"`
	Contrast   string            `json:"contrast" yaml:"contrast"`
	ExternalID string            `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Canonical  Effect            `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Extra      map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Get returns the raw value of a field.
func (r Record) Get(f Field) string {
	switch f {
	case FieldPractice:
		return r.Practice
	case FieldEffect:
		return r.Effect
	case FieldProperty:
		return r.Property
	case FieldActor:
		return r.Actor
	case FieldContrast:
		return r.Contrast
	case FieldExternalID:
		return r.ExternalID
	}
	return ""
}

// Pair returns the trimmed (practice, contrast) pair of the record.
func (r Record) Pair() Pair {
	return NewPair(r.Practice, r.Contrast)
}

// WithCanonical returns a copy of r carrying the canonical effect e.
func (r Record) WithCanonical(e Effect) Record {
	r.Canonical = e
	return r
}

// Swapped returns a copy of r with practice and contrast exchanged and the
// canonical effect inverted.
func (r Record) Swapped() Record {
	r.Practice, r.Contrast = r.Contrast, r.Practice
	r.Canonical = r.Canonical.Invert()
	return r
}

// Finalized returns a copy of r whose free-text effect is replaced by the
// canonical token. Used only when writing the retained table.
func (r Record) Finalized() Record {
	if r.Canonical != "" {
		r.Effect = string(r.Canonical)
	}
	return r
}

// Columns maps record fields to source table column names.
type Columns struct {
	Practice   string `json:"practice"`
	Effect     string `json:"effect"`
	Property   string `json:"property"`
	Actor      string `json:"actor"`
	Contrast   string `json:"contrast"`
	ExternalID string `json:"external_id"`
}

// DefaultColumns returns the column names used when no mapping is configured.
func DefaultColumns() Columns {
	return Columns{
		Practice:   "practice_unified",
		Effect:     "effect",
		Property:   "property_unified",
		Actor:      "actor_unified",
		Contrast:   "contrasting_practice_unified",
		ExternalID: "unique_id",
	}
}

// WithDefaults fills empty names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Practice == "" {
		c.Practice = d.Practice
	}
	if c.Effect == "" {
		c.Effect = d.Effect
	}
	if c.Property == "" {
		c.Property = d.Property
	}
	if c.Actor == "" {
		c.Actor = d.Actor
	}
	if c.Contrast == "" {
		c.Contrast = d.Contrast
	}
	if c.ExternalID == "" {
		c.ExternalID = d.ExternalID
	}
	return c
}

// Name returns the source column mapped to f.
func (c Columns) Name(f Field) string {
	switch f {
	case FieldPractice:
		return c.Practice
	case FieldEffect:
		return c.Effect
	case FieldProperty:
		return c.Property
	case FieldActor:
		return c.Actor
	case FieldContrast:
		return c.Contrast
	case FieldExternalID:
		return c.ExternalID
	}
	return ""
}

// Required lists the columns a source table must contain, in record order.
func (c Columns) Required() []string {
	return []string{c.Practice, c.Effect, c.Property, c.Actor, c.Contrast}
}

// FieldFor maps a source column name back to a record field.
func (c Columns) FieldFor(column string) (Field, bool) {
	for _, f := range []Field{FieldPractice, FieldEffect, FieldProperty, FieldActor, FieldContrast, FieldExternalID} {
		if c.Name(f) == column {
			return f, true
		}
	}
	return "", false
}

// DedupLabel is the ledger column label for the Stage 8 composite key.
func (c Columns) DedupLabel(withExternalID bool) string {
	parts := make([]string, 0, 6)
	if withExternalID {
		parts = append(parts, c.ExternalID)
	}
	parts = append(parts, c.Practice, EffectNormalizedColumn, c.Property, c.Actor, c.Contrast)
	return strings.Join(parts, "+")
}
