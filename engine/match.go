package engine

// Match holds the result of a single successful match: one span per
// capturing group, plus the whole match as group 0.
type Match struct {
	pattern *Pattern
	input   string
	spans   []Span
}

// Span is a half-open byte offset range into the input.
// Groups that did not take part in a match span (-1, -1).
type Span struct {
	Start int
	End   int
}

func (s Span) absent() bool {
	return s.Start < 0 && s.End < 0
}

// newMatch builds a match from a regexp-style index slice.
func newMatch(p *Pattern, input string, a []int) *Match {
	n := 1 + p.NumGroups()

	spans := make([]Span, 0, n)
	for i := 0; i < n && 2*i < len(a); i++ {
		spans = append(spans, Span{Start: a[2*i], End: a[2*i+1]})
	}

	m := Match{
		pattern: p,
		input:   input,
		spans:   spans,
	}

	return &m
}

// Pattern returns the pattern that produced the match.
func (m *Match) Pattern() *Pattern {
	return m.pattern
}

// Input returns the text the pattern matched against.
func (m *Match) Input() string {
	return m.input
}

// Text returns the text of the whole match.
func (m *Match) Text() string {
	text, _ := m.Group(0)
	return text
}

// NumGroups returns the number of capturing groups, excluding group 0.
func (m *Match) NumGroups() int {
	return len(m.spans) - 1
}

// Span returns the span of group i, or (-1, -1) when the group is out of
// range or did not take part in the match.
func (m *Match) Span(i int) Span {
	if i < 0 || i >= len(m.spans) {
		return Span{Start: -1, End: -1}
	}

	return m.spans[i]
}

// Group returns the text of group i and whether the group took part in the
// match.
func (m *Match) Group(i int) (string, bool) {
	sp := m.Span(i)
	if sp.absent() {
		return "", false
	}

	return m.input[sp.Start:sp.End], true
}

// GroupByName returns the text of the named group and whether it took part
// in the match.
func (m *Match) GroupByName(name string) (string, bool) {
	return m.Group(m.pattern.GroupIndex(name))
}

// SpanByName returns the span of the named group, or (-1, -1).
func (m *Match) SpanByName(name string) Span {
	return m.Span(m.pattern.GroupIndex(name))
}

// Groups returns the texts of groups 1..n, with the empty string for groups
// that did not take part in the match.
func (m *Match) Groups() []string {
	groups := make([]string, 0, m.NumGroups())
	for i := 1; i < len(m.spans); i++ {
		text, _ := m.Group(i)
		groups = append(groups, text)
	}

	return groups
}

// GroupDict returns the texts of all named groups, keyed by name.
// Named groups that did not take part in the match map to the empty string.
func (m *Match) GroupDict() map[string]string {
	names := m.pattern.GroupNames()

	dict := make(map[string]string, len(names))
	for i, name := range names {
		if i != 0 && name != "" {
			text, _ := m.Group(i)
			dict[name] = text
		}
	}

	return dict
}
