package unitex

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// External interchange is single-byte Latin-1; internally everything is
// a Go string. The two helpers sit at the boundary.

// DecodeLatin1 converts Latin-1 interchange bytes to a string. Every
// byte has a decoding, so this cannot fail.
func DecodeLatin1(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		b.WriteRune(charmap.ISO8859_1.DecodeByte(c))
	}
	return b.String()
}

// EncodeLatin1 converts a string to Latin-1 interchange bytes. A rune
// without a Latin-1 encoding fails with its byte offset in s.
func EncodeLatin1(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i, r := range s {
		b, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("encode latin-1: no encoding for %q at offset %d", r, i)
		}
		out = append(out, b)
	}
	return out, nil
}
