package rex

import (
	"strings"
	"unicode/utf8"
)

// specialBytes contains 16 * 8 = 128 bits, one per ASCII byte value.
// A set bit marks a byte that Escape must prefix with a backslash.
// The marked bytes are "()[]{}?*+-|^$\\.&~# \t\n\r\v\f".
var specialBytes = [16]byte{
	0x04, 0x00, 0x00, 0x04, 0x04, 0x00, 0x04, 0x00,
	0x04, 0x05, 0x05, 0xa5, 0xa1, 0xa5, 0xa4, 0x08,
}

// special reports whether byte b needs to be escaped.
func special(b byte) bool {
	return b < utf8.RuneSelf && specialBytes[b%16]&(1<<(b/16)) != 0
}

// Escape escapes every character of s that is syntactically significant in
// an expression, so the result matches s literally. It escapes the same
// characters as Python's re.escape, which is a superset of the set
// regexp.QuoteMeta covers.
func Escape(s string) string {
	var i int
	for i = 0; i < len(s); i++ {
		if special(s[i]) {
			break
		}
	}

	// No metacharacters found.
	if i >= len(s) {
		return s
	}

	var b strings.Builder
	b.Grow(2 * len(s))
	b.WriteString(s[:i])

	for ; i < len(s); i++ {
		if special(s[i]) {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}

	return b.String()
}
