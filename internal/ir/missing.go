package ir

import "strings"

// naTokens are the cell values read as missing, the default NA set of
// pandas.read_csv. The upstream extractor writes "NA" for unknown fields.
var naTokens = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {},
	"-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a cell holds no value: empty after trimming
// whitespace, or one of the NA tokens. Token matching is exact and
// case-sensitive on the trimmed value.
func IsMissing(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	_, ok := naTokens[v]
	return ok
}
