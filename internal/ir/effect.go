package ir

// Effect is the canonical direction of a relation.
// The zero value means "not normalized yet".
type Effect string

const (
	Increase Effect = "increase"
	Decrease Effect = "decrease"
	NoEffect Effect = "no effect"
)

// Effects lists the canonical tokens in match priority order.
// Normalization scans for them in exactly this order.
var Effects = []Effect{Increase, Decrease, NoEffect}

// Valid reports whether e is one of the three canonical tokens.
func (e Effect) Valid() bool {
	switch e {
	case Increase, Decrease, NoEffect:
		return true
	}
	return false
}

// Invert returns the effect seen from the opposite side of a comparison.
// Invert is self-inverse: e.Invert().Invert() == e for every value.
func (e Effect) Invert() Effect {
	switch e {
	case Increase:
		return Decrease
	case Decrease:
		return Increase
	}
	return e
}

func (e Effect) String() string {
	return string(e)
}
