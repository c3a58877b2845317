package ir

import (
	"slices"
	"strings"
)

// PairSeparator splits a "practice;contrast" allow-list entry.
const PairSeparator = ";"

// Pair is a (practice, contrast) combination. Both sides are trimmed;
// matching is exact otherwise (no case folding).
type Pair struct {
	Practice string `json:"practice" yaml:"practice"`
	Contrast string `json:"contrast" yaml:"contrast"`
}

// NewPair builds a Pair from untrimmed values.
func NewPair(practice, contrast string) Pair {
	return Pair{Practice: strings.TrimSpace(practice), Contrast: strings.TrimSpace(contrast)}
}

// Reversed returns the pair read in the opposite direction.
func (p Pair) Reversed() Pair {
	return Pair{Practice: p.Contrast, Contrast: p.Practice}
}

func (p Pair) String() string {
	return p.Practice + PairSeparator + p.Contrast
}

// PairSet is a hash set of pairs with O(1) membership.
type PairSet map[Pair]struct{}

// NewPairSet builds a set from pairs.
func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s[p] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of distinct pairs.
func (s PairSet) Len() int {
	return len(s)
}

// Pairs returns the members sorted by practice then contrast.
func (s PairSet) Pairs() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Pair) int {
		if c := strings.Compare(a.Practice, b.Practice); c != 0 {
			return c
		}
		return strings.Compare(a.Contrast, b.Contrast)
	})
	return out
}

// Missing returns the members of s absent from other, sorted.
// Used to report orientation entries outside the contrast list.
func (s PairSet) Missing(other PairSet) []Pair {
	var out []Pair
	for _, p := range s.Pairs() {
		if !other.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Unoriented returns members of s for which neither direction is in
// orientation. Records with such pairs are swapped by the canonicalizer but
// still end up outside the orientation list.
func (s PairSet) Unoriented(orientation PairSet) []Pair {
	var out []Pair
	for _, p := range s.Pairs() {
		if !orientation.Has(p) && !orientation.Has(p.Reversed()) {
			out = append(out, p)
		}
	}
	return out
}
