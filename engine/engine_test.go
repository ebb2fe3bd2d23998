package engine

import (
	"slices"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	p, err := Compile(`(?P<name>[a-z]+)-([0-9]+)`, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := p.re.(*stdRegex); !ok {
		t.Errorf("compiled with %T, want the standard engine", p.re)
	}

	if p.Expr() != `(?P<name>[a-z]+)-([0-9]+)` {
		t.Errorf("unexpected expr %q", p.Expr())
	}
	if p.Flags() != 0 {
		t.Errorf("unexpected flags %d", p.Flags())
	}
	if p.NumGroups() != 2 {
		t.Errorf("got %d groups, want 2", p.NumGroups())
	}

	names := p.GroupNames()
	if !slices.Equal(names, []string{"", "name", ""}) {
		t.Errorf("unexpected group names %q", names)
	}

	if i := p.GroupIndex("name"); i != 1 {
		t.Errorf("GroupIndex(name) = %d, want 1", i)
	}
	if i := p.GroupIndex("missing"); i != -1 {
		t.Errorf("GroupIndex(missing) = %d, want -1", i)
	}
}

func TestCompileFallback(t *testing.T) {
	// Lookaheads are rejected by the standard engine.
	p, err := Compile(`(?P<word>\w+)(?= )`, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := p.re.(*advRegex); !ok {
		t.Fatalf("compiled with %T, want the fallback engine", p.re)
	}

	if p.NumGroups() != 1 {
		t.Errorf("got %d groups, want 1", p.NumGroups())
	}
	if i := p.GroupIndex("word"); i != 1 {
		t.Errorf("GroupIndex(word) = %d, want 1", i)
	}

	m := p.Search("hello world", 0)
	if m == nil {
		t.Fatal("no match")
	}
	if m.Text() != "hello" {
		t.Errorf("matched %q, want %q", m.Text(), "hello")
	}
	if text, ok := m.GroupByName("word"); !ok || text != "hello" {
		t.Errorf("group word = %q, %v", text, ok)
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile(`(unclosed`, 0)
	if err == nil {
		t.Fatal("expected an error")
	}

	// The standard engine's message prefix is stripped.
	if strings.HasPrefix(err.Error(), "error parsing regexp") {
		t.Errorf("unexpected error message %q", err)
	}
}

func TestInlineFlags(t *testing.T) {
	tests := []struct {
		flags int
		want  string
	}{
		{0, ""},
		{FlagIgnoreCase, "(?i)"},
		{FlagMultiline, "(?m)"},
		{FlagDotAll, "(?s)"},
		{FlagIgnoreCase | FlagDotAll, "(?is)"},
		{FlagIgnoreCase | FlagMultiline | FlagDotAll, "(?ims)"},
		{FlagASCII, ""},
	}

	for _, tt := range tests {
		if got := inlineFlags(tt.flags); got != tt.want {
			t.Errorf("inlineFlags(%d) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestIgnoreCaseMatch(t *testing.T) {
	p, err := Compile(`application\.[0-9]+\.log`, FlagIgnoreCase)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{"application.3.log", "APPLICATION.3.LOG"} {
		if p.MatchAt(s, 0) == nil {
			t.Errorf("no match for %q", s)
		}
	}

	if p.MatchAt("application..log", 0) != nil {
		t.Error("matched input without a digit")
	}
}

func TestMatchAt(t *testing.T) {
	p, err := Compile(`[0-9]+`, 0)
	if err != nil {
		t.Fatal(err)
	}

	if m := p.MatchAt("x123", 0); m != nil {
		t.Errorf("matched %q at 0, want no match", m.Text())
	}

	m := p.MatchAt("x123", 1)
	if m == nil {
		t.Fatal("no match at 1")
	}
	if m.Text() != "123" {
		t.Errorf("matched %q, want %q", m.Text(), "123")
	}
	if sp := m.Span(0); sp.Start != 1 || sp.End != 4 {
		t.Errorf("span = (%d, %d), want (1, 4)", sp.Start, sp.End)
	}

	// Anchors apply at pos; earlier text is invisible.
	a, err := Compile(`^[0-9]+`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a.MatchAt("x123", 1) == nil {
		t.Error("anchored pattern did not match at pos")
	}

	// Positions outside the input are clamped.
	if p.MatchAt("123", 100) != nil {
		t.Error("matched past the end of input")
	}
}

func TestSearch(t *testing.T) {
	p, err := Compile(`l+`, 0)
	if err != nil {
		t.Fatal(err)
	}

	m := p.Search("hello world", 0)
	if m == nil {
		t.Fatal("no match")
	}
	if sp := m.Span(0); sp.Start != 2 || sp.End != 4 {
		t.Errorf("span = (%d, %d), want (2, 4)", sp.Start, sp.End)
	}

	m = p.Search("hello world", 4)
	if m == nil {
		t.Fatal("no match after 4")
	}
	if sp := m.Span(0); sp.Start != 9 || sp.End != 10 {
		t.Errorf("span = (%d, %d), want (9, 10)", sp.Start, sp.End)
	}

	if p.Search("hello world", 10) != nil {
		t.Error("matched past the last l")
	}
}

func TestFindAll(t *testing.T) {
	p, err := Compile(`[0-9]+`, 0)
	if err != nil {
		t.Fatal(err)
	}

	texts := func(ms []*Match) []string {
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Text()
		}
		return out
	}

	all := p.FindAll("a1b22c333", 0)
	if got := texts(all); !slices.Equal(got, []string{"1", "22", "333"}) {
		t.Errorf("unexpected matches %q", got)
	}

	two := p.FindAll("a1b22c333", 2)
	if got := texts(two); !slices.Equal(got, []string{"1", "22"}) {
		t.Errorf("unexpected limited matches %q", got)
	}

	if p.FindAll("abc", 0) != nil {
		t.Error("expected no matches")
	}
}

func TestSplit(t *testing.T) {
	p, err := Compile(`\s*,\s*`, 0)
	if err != nil {
		t.Fatal(err)
	}

	got := p.Split("a, b ,c", 0)
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("unexpected parts %q", got)
	}

	got = p.Split("a, b ,c", 1)
	if !slices.Equal(got, []string{"a", "b ,c"}) {
		t.Errorf("unexpected limited parts %q", got)
	}

	got = p.Split("abc", 0)
	if !slices.Equal(got, []string{"abc"}) {
		t.Errorf("unexpected parts without matches %q", got)
	}
}

func TestGroups(t *testing.T) {
	p, err := Compile(`(?P<key>\w+)=(?P<value>\w+)(;)?`, 0)
	if err != nil {
		t.Fatal(err)
	}

	m := p.MatchAt("a=b", 0)
	if m == nil {
		t.Fatal("no match")
	}

	if m.NumGroups() != 3 {
		t.Errorf("got %d groups, want 3", m.NumGroups())
	}
	if got := m.Groups(); !slices.Equal(got, []string{"a", "b", ""}) {
		t.Errorf("unexpected groups %q", got)
	}

	if text, ok := m.Group(2); !ok || text != "b" {
		t.Errorf("group 2 = %q, %v", text, ok)
	}
	if _, ok := m.Group(3); ok {
		t.Error("optional group took part in the match")
	}
	if _, ok := m.Group(99); ok {
		t.Error("out of range group reported as present")
	}

	if sp := m.SpanByName("value"); sp.Start != 2 || sp.End != 3 {
		t.Errorf("span of value = (%d, %d), want (2, 3)", sp.Start, sp.End)
	}

	dict := m.GroupDict()
	if len(dict) != 2 || dict["key"] != "a" || dict["value"] != "b" {
		t.Errorf("unexpected group dict %v", dict)
	}

	if m.Input() != "a=b" {
		t.Errorf("unexpected input %q", m.Input())
	}
	if m.Pattern() != p {
		t.Error("match does not point back to its pattern")
	}
}

func TestFallbackByteOffsets(t *testing.T) {
	// Force the fallback engine with a lookahead; the input contains
	// multi-byte runes before and inside the match.
	p, err := Compile(`(?P<l>é+)(?=!)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.re.(*advRegex); !ok {
		t.Fatalf("compiled with %T, want the fallback engine", p.re)
	}

	s := "zäé!"
	m := p.Search(s, 0)
	if m == nil {
		t.Fatal("no match")
	}

	sp := m.Span(0)
	if s[sp.Start:sp.End] != "é" {
		t.Errorf("span (%d, %d) selects %q, want %q", sp.Start, sp.End, s[sp.Start:sp.End], "é")
	}
	if m.Text() != "é" {
		t.Errorf("matched %q, want %q", m.Text(), "é")
	}
}

func TestFallbackFindAll(t *testing.T) {
	p, err := Compile(`\w+(?=,)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.re.(*advRegex); !ok {
		t.Fatalf("compiled with %T, want the fallback engine", p.re)
	}

	ms := p.FindAll("a, bb, c", 0)
	if len(ms) != 2 || ms[0].Text() != "a" || ms[1].Text() != "bb" {
		t.Errorf("unexpected matches %v", ms)
	}

	ms = p.FindAll("a, bb, c", 1)
	if len(ms) != 1 || ms[0].Text() != "a" {
		t.Errorf("unexpected limited matches %v", ms)
	}
}

func TestFormatFlags(t *testing.T) {
	tests := []struct {
		flags int
		want  string
	}{
		{0, "0"},
		{FlagIgnoreCase, "IGNORECASE"},
		{FlagIgnoreCase | FlagMultiline, "IGNORECASE|MULTILINE"},
		{FlagASCII | FlagDotAll, "DOTALL|ASCII"},
		{1 << 12, "0x1000"},
		{FlagIgnoreCase | 1<<12, "IGNORECASE|0x1000"},
	}

	for _, tt := range tests {
		if got := FormatFlags(tt.flags); got != tt.want {
			t.Errorf("FormatFlags(%d) = %q, want %q", tt.flags, got, tt.want)
		}
	}
}
