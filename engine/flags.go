package engine

import (
	"strconv"
	"strings"
)

// Possible flags for compiled patterns.
// The numeric values mirror Python's `re` module, so masks built here stay
// comparable with masks produced by other hosts of the same numbering.
const (
	_ = 1 << iota // `re.TEMPLATE`; unused
	FlagIgnoreCase
	FlagLocale
	FlagMultiline
	FlagDotAll
	FlagUnicode
	FlagVerbose
	FlagDebug
	FlagASCII
)

// Order must be in sync with the flag constants.
var flagNames = []string{
	"TEMPLATE",
	"IGNORECASE",
	"LOCALE",
	"MULTILINE",
	"DOTALL",
	"UNICODE",
	"VERBOSE",
	"DEBUG",
	"ASCII",
}

// FormatFlags renders a flag mask as a readable "IGNORECASE|MULTILINE"
// string. Bits without a name are appended as a single hex literal.
// The empty mask renders as "0".
func FormatFlags(flags int) string {
	if flags == 0 {
		return "0"
	}

	var b strings.Builder

	for i := 0; i < len(flagNames); i++ {
		f := 1 << i
		if flags&f == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(flagNames[i])
		flags &= ^f
	}

	if flags != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("0x")
		b.WriteString(strconv.FormatUint(uint64(flags), 16))
	}

	return b.String()
}
