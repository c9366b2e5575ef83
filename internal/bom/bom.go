// Package bom recognises byte-order marks at the start of file content.
//
// Only the UTF-8 mark is ever removed by this project. The UTF-16 and UTF-32
// marks are recognised so callers can tell a file that has no mark apart from
// one that carries a mark for a different encoding, and report it.
package bom

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// UTF8 is the UTF-8 byte-order mark.
var UTF8 = []byte{0xEF, 0xBB, 0xBF}

var (
	utf32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	utf32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	utf16LE = []byte{0xFF, 0xFE}
	utf16BE = []byte{0xFE, 0xFF}
)

// Kind identifies which byte-order mark, if any, starts a byte sequence.
type Kind int

const (
	None Kind = iota
	KindUTF8
	KindUTF16LE
	KindUTF16BE
	KindUTF32LE
	KindUTF32BE
)

func (k Kind) String() string {
	switch k {
	case KindUTF8:
		return "UTF-8"
	case KindUTF16LE:
		return "UTF-16LE"
	case KindUTF16BE:
		return "UTF-16BE"
	case KindUTF32LE:
		return "UTF-32LE"
	case KindUTF32BE:
		return "UTF-32BE"
	default:
		return "none"
	}
}

// Len returns the length in bytes of the mark.
func (k Kind) Len() int {
	switch k {
	case KindUTF8:
		return len(UTF8)
	case KindUTF16LE, KindUTF16BE:
		return 2
	case KindUTF32LE, KindUTF32BE:
		return 4
	default:
		return 0
	}
}

// Encoding returns the text encoding the mark announces, or nil for None.
func (k Kind) Encoding() encoding.Encoding {
	switch k {
	case KindUTF8:
		return unicode.UTF8BOM
	case KindUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case KindUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case KindUTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case KindUTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	default:
		return nil
	}
}

// Foreign reports whether k is a mark this project recognises but never strips.
func (k Kind) Foreign() bool {
	return k != None && k != KindUTF8
}

// Detect returns the kind of byte-order mark b starts with.
// UTF-32LE is checked before UTF-16LE since their marks share a prefix.
func Detect(b []byte) Kind {
	switch {
	case bytes.HasPrefix(b, UTF8):
		return KindUTF8
	case bytes.HasPrefix(b, utf32LE):
		return KindUTF32LE
	case bytes.HasPrefix(b, utf32BE):
		return KindUTF32BE
	case bytes.HasPrefix(b, utf16LE):
		return KindUTF16LE
	case bytes.HasPrefix(b, utf16BE):
		return KindUTF16BE
	default:
		return None
	}
}

// HasUTF8 reports whether b begins with the UTF-8 byte-order mark.
func HasUTF8(b []byte) bool {
	return bytes.HasPrefix(b, UTF8)
}

// Strip returns b without a leading UTF-8 mark and whether one was removed.
// The returned slice aliases b.
func Strip(b []byte) ([]byte, bool) {
	if !HasUTF8(b) {
		return b, false
	}
	return b[len(UTF8):], true
}
