// Package engine compiles serialized expressions against a host regular
// expression implementation and executes matches. The standard library
// engine is tried first; expressions it rejects are retried with the
// regexp2 engine in RE2 compatibility mode, so named groups keep the
// `(?P<name>...)` form in both. All positions reported by this package are
// byte offsets into the original input.
package engine

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled expression bound to one of the host engines.
type Pattern struct {
	re    matcher
	expr  string
	flags int

	groupIndex map[string]int
}

// matcher is the minimal surface both host engines provide.
// Index slices follow the regexp convention: 2*(1+n) byte offsets with -1
// pairs for groups that did not take part in the match.
type matcher interface {
	SubexpNames() []string
	NumSubexp() int
	find(s string) []int
	findAll(s string, n int) [][]int
}

// Compile compiles the expression with the given flag mask.
// The returned pattern is immutable and safe for concurrent use.
func Compile(expr string, flags int) (*Pattern, error) {
	re, err := compile(expr, flags)
	if err != nil {
		if e, ok := strings.CutPrefix(err.Error(), "error parsing regexp: "); ok {
			err = errors.New(e)
		}

		return nil, err
	}

	// Build the group index once, since matches may need it repeatedly.
	groups := make(map[string]int)
	for i, name := range re.SubexpNames() {
		if i != 0 && name != "" {
			groups[name] = i
		}
	}

	p := Pattern{
		re:         re,
		expr:       expr,
		flags:      flags,
		groupIndex: groups,
	}

	return &p, nil
}

func compile(expr string, flags int) (matcher, error) {
	s := expr
	if prefix := inlineFlags(flags); prefix != "" {
		s = prefix + s
	}

	r, err := regexp.Compile(s)
	if err == nil {
		return &stdRegex{re: r}, nil
	}

	options := regexp2.None | regexp2.RE2

	if flags&FlagIgnoreCase != 0 {
		options |= regexp2.IgnoreCase
	}
	if flags&FlagMultiline != 0 {
		options |= regexp2.Multiline
	}
	if flags&FlagDotAll != 0 {
		options |= regexp2.Singleline
	}
	if flags&FlagASCII == 0 {
		options |= regexp2.Unicode
	}

	r2, err2 := regexp2.Compile(expr, options)
	if err2 != nil {
		return nil, err2 // return the second error
	}

	return &advRegex{re: r2}, nil
}

// inlineFlags renders the flags both engines understand as an inline group
// prefix. Flags outside of the inline subset are handled elsewhere:
// ASCII selects the engine options, the remaining ones have no host effect.
func inlineFlags(flags int) string {
	var b strings.Builder

	if flags&FlagIgnoreCase != 0 {
		b.WriteByte('i')
	}
	if flags&FlagMultiline != 0 {
		b.WriteByte('m')
	}
	if flags&FlagDotAll != 0 {
		b.WriteByte('s')
	}

	if b.Len() == 0 {
		return ""
	}

	return "(?" + b.String() + ")"
}

// Expr returns the expression text the pattern was compiled from,
// without the inline flag prefix.
func (p *Pattern) Expr() string {
	return p.expr
}

// Flags returns the flag mask the pattern was compiled with.
func (p *Pattern) Flags() int {
	return p.flags
}

// NumGroups returns the number of capturing groups.
func (p *Pattern) NumGroups() int {
	return p.re.NumSubexp()
}

// GroupNames returns the names of the capturing groups by position.
// Index 0 and unnamed groups hold the empty string.
func (p *Pattern) GroupNames() []string {
	return p.re.SubexpNames()
}

// GroupIndex returns the position of the named group, or -1 if the pattern
// has no group with that name.
func (p *Pattern) GroupIndex(name string) int {
	if i, ok := p.groupIndex[name]; ok {
		return i
	}

	return -1
}

// MatchAt reports the match of the pattern at position pos of s, or nil if
// the pattern does not match there. The text before pos is not visible to
// the pattern; anchors apply at pos.
func (p *Pattern) MatchAt(s string, pos int) *Match {
	pos = clamp(pos, len(s))

	a := p.re.find(s[pos:])
	if a == nil || a[0] != 0 {
		return nil
	}

	shiftBy(a, pos)

	return newMatch(p, s, a)
}

// Search returns the leftmost match of the pattern at or after position pos
// of s, or nil. Like MatchAt, the text before pos is invisible.
func (p *Pattern) Search(s string, pos int) *Match {
	pos = clamp(pos, len(s))

	a := p.re.find(s[pos:])
	if a == nil {
		return nil
	}

	shiftBy(a, pos)

	return newMatch(p, s, a)
}

// FindAll returns all non-overlapping matches of the pattern in s, scanning
// left to right. Limits above zero cap the number of matches.
func (p *Pattern) FindAll(s string, n int) []*Match {
	if n <= 0 {
		n = -1
	}

	as := p.re.findAll(s, n)
	if len(as) == 0 {
		return nil
	}

	matches := make([]*Match, len(as))
	for i, a := range as {
		matches[i] = newMatch(p, s, a)
	}

	return matches
}

// Split splits s around matches of the pattern. Limits above zero cap the
// number of splits, leaving the remainder in the final element.
func (p *Pattern) Split(s string, n int) []string {
	if n <= 0 {
		n = -1
	}

	as := p.re.findAll(s, n)

	parts := make([]string, 0, len(as)+1)
	beg := 0

	for _, a := range as {
		parts = append(parts, s[beg:a[0]])
		beg = a[1]
	}

	return append(parts, s[beg:])
}

// clamp clamps `pos` between 0 and `length`.
func clamp(pos, length int) int {
	return min(max(pos, 0), length)
}

// shiftBy moves all participating offsets of an index slice by pos.
func shiftBy(a []int, pos int) {
	if pos == 0 {
		return
	}
	for i, v := range a {
		if v >= 0 {
			a[i] = v + pos
		}
	}
}

// Standard library engine

type stdRegex struct {
	re *regexp.Regexp
}

var _ matcher = (*stdRegex)(nil)

func (r *stdRegex) SubexpNames() []string {
	return r.re.SubexpNames()
}

func (r *stdRegex) NumSubexp() int {
	return r.re.NumSubexp()
}

func (r *stdRegex) find(s string) []int {
	return r.re.FindStringSubmatchIndex(s)
}

func (r *stdRegex) findAll(s string, n int) [][]int {
	return r.re.FindAllStringSubmatchIndex(s, n)
}

// Fallback engine

type advRegex struct {
	re *regexp2.Regexp
}

var _ matcher = (*advRegex)(nil)

func (r *advRegex) SubexpNames() []string {
	nums := r.re.GetGroupNumbers()

	names := make([]string, len(nums))
	for i, n := range nums {
		name := r.re.GroupNameFromNumber(n)

		// Unnamed groups carry their number as the name; filter those.
		if _, err := strconv.Atoi(name); err != nil {
			names[i] = name
		}
	}

	return names
}

func (r *advRegex) NumSubexp() int {
	return len(r.re.GetGroupNumbers()) - 1
}

func (r *advRegex) find(s string) []int {
	in := newRuneInput(s)

	m, err := r.re.FindRunesMatchStartingAt(in.chars, 0)
	if m == nil || err != nil {
		return nil
	}

	return in.spans(m)
}

func (r *advRegex) findAll(s string, n int) [][]int {
	in := newRuneInput(s)

	m, err := r.re.FindRunesMatchStartingAt(in.chars, 0)

	var as [][]int
	for m != nil && err == nil {
		as = append(as, in.spans(m))
		if n > 0 && len(as) == n {
			break
		}

		m, err = r.re.FindNextMatch(m)
	}

	return as
}

// runeInput holds the rune form of an input string together with the byte
// offset of every rune, so rune positions reported by the fallback engine
// can be mapped back to byte offsets. For pure ASCII input the offset table
// is omitted and positions are used as is.
type runeInput struct {
	chars   []rune
	byteOff []int // byteOff[i] is the byte offset of rune i; one extra entry for the end
}

func newRuneInput(s string) *runeInput {
	if isASCII(s) {
		return &runeInput{chars: []rune(s)}
	}

	chars := make([]rune, 0, len(s))
	byteOff := make([]int, 0, len(s)+1)
	off := 0

	for len(s) > 0 {
		ch, size := utf8.DecodeRuneInString(s)

		chars = append(chars, ch)
		byteOff = append(byteOff, off)

		off += size
		s = s[size:]
	}

	byteOff = append(byteOff, off)

	return &runeInput{chars: chars, byteOff: byteOff}
}

// spans converts a fallback engine match into an index slice of byte offsets.
func (in *runeInput) spans(m *regexp2.Match) []int {
	groups := m.Groups()

	a := make([]int, 0, 2*len(groups))
	for _, g := range groups {
		if len(g.Captures) != 0 {
			a = append(a, in.byteIndex(g.Index), in.byteIndex(g.Index+g.Length))
		} else {
			a = append(a, -1, -1)
		}
	}

	return a
}

func (in *runeInput) byteIndex(runeIndex int) int {
	if in.byteOff == nil {
		return runeIndex
	}

	return in.byteOff[runeIndex]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
