// Package encoding provides the text codecs used by PMX string fields.
package encoding

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Text selects the string encoding of a PMX file. The numeric values are
// the header selector byte.
type Text uint8

const (
	UTF16LE Text = 0
	UTF8    Text = 1
)

// String returns the canonical configuration name of the encoding.
func (t Text) String() string {
	switch t {
	case UTF16LE:
		return "utf-16le"
	case UTF8:
		return "utf-8"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the supported encodings.
func (t Text) Valid() bool {
	return t == UTF16LE || t == UTF8
}

// ParseText parses an encoding name. Matching ignores case, '-' and '_'.
func ParseText(name string) (Text, error) {
	n := strings.ToLower(name)
	n = strings.NewReplacer("-", "", "_", "").Replace(n)
	switch n {
	case "utf16le", "utf16":
		return UTF16LE, nil
	case "utf8":
		return UTF8, nil
	}
	return 0, fmt.Errorf("unknown text encoding %q", name)
}

// dropIllFormed removes bytes that are not valid UTF-8 instead of replacing
// them with U+FFFD.
func dropIllFormed() transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool {
		return r == utf8.RuneError
	}))
}

// Encode converts s to the byte form of t. Input that cannot be represented
// is dropped, so encoding never fails.
func (t Text) Encode(s string) []byte {
	if s == "" {
		return nil
	}

	var tr transform.Transformer = dropIllFormed()
	if t == UTF16LE {
		tr = transform.Chain(tr, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder())
	}

	result, _, err := transform.Bytes(tr, []byte(s))
	if err != nil {
		return nil
	}
	return result
}

// Decode converts bytes in encoding t back to a Go string.
// Ill-formed input is dropped, mirroring Encode.
func (t Text) Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var tr transform.Transformer = dropIllFormed()
	if t == UTF16LE {
		tr = transform.Chain(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(), tr)
	}

	result, _, err := transform.Bytes(tr, data)
	if err != nil {
		return ""
	}
	return string(result)
}
