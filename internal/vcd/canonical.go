package vcd

import "golang.org/x/text/unicode/norm"

// canonicalName NFC-normalizes a signal name so that composed and
// decomposed spellings of the same hierarchical path resolve to the same
// index entry. Applied once at index build and once per lookup.
func canonicalName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
