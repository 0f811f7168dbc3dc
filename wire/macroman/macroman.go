// Package macroman transcodes between the single-byte legacy Macintosh
// character encoding used by classic Palace clients and Unicode, per
// spec.md §3.3/§9.
package macroman

import (
	"golang.org/x/text/encoding/charmap"
)

// Decode converts MacRoman-encoded bytes to a Unicode string. The
// Macintosh code page defines all 256 byte values, so this never
// fails; 7-bit ASCII round-trips exactly.
func Decode(b []byte) string {
	s, err := charmap.Macintosh.NewDecoder().String(string(b))
	if err != nil {
		// charmap.Macintosh has no undefined code points, but guard
		// against a future charmap change rather than panic.
		return string(b)
	}
	return s
}

// Encode converts a Unicode string to MacRoman bytes. Runes without a
// MacRoman code point encode as '?' rather than failing, matching the
// spec's "may be lossy" allowance for extended bytes.
func Encode(s string) []byte {
	b, err := charmap.Macintosh.NewEncoder().Bytes([]byte(s))
	if err == nil {
		return b
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		if eb, eerr := charmap.Macintosh.NewEncoder().Bytes([]byte(string(r))); eerr == nil && len(eb) > 0 {
			out = append(out, eb...)
			continue
		}
		out = append(out, '?')
	}
	return out
}
