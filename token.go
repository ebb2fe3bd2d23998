package rex

// tokenOp is the structural role of a token.
type tokenOp uint8

const (
	opText tokenOp = iota
	opOpenBracket
	opCloseBracket
	opAlternation
)

// Token is one immutable unit of emitted syntax: a literal text fragment or
// a structural marker. Tokens compare equal when role and text are equal.
type Token struct {
	op   tokenOp
	text string
}

// Structural marker tokens.
var (
	// OpenBracket opens a character class.
	OpenBracket = Token{op: opOpenBracket}

	// CloseBracket closes a character class.
	CloseBracket = Token{op: opCloseBracket}

	// Alternation separates the branches of an alternation.
	Alternation = Token{op: opAlternation}
)

// Text returns a token holding literal text. The text is emitted verbatim;
// escaping is the caller's concern.
func Text(s string) Token {
	return Token{op: opText, text: s}
}

// String renders the syntax the token emits.
func (t Token) String() string {
	switch t.op {
	case opOpenBracket:
		return "["
	case opCloseBracket:
		return "]"
	case opAlternation:
		return "|"
	default:
		return t.text
	}
}
