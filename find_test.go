package rex

import (
	"errors"
	"slices"
	"testing"
)

func TestFinderMatch(t *testing.T) {
	p := New().Literal("v").AnyNumber().AtLeastOne()
	f := NewFinderWithCache(p, 16)

	m, err := f.Match("v42")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Text() != "v42" {
		t.Fatalf("Match() = %v, want a match for v42", m)
	}

	// The second lookup is served from the cache.
	if _, err := f.Match("v42"); err != nil {
		t.Fatal(err)
	}

	stats := f.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, want 1 hit, 1 miss", stats)
	}
}

func TestFinderCachesNoMatch(t *testing.T) {
	p := New().Literal("v").AnyNumber()
	f := NewFinderWithCache(p, 16)

	for i := 0; i < 2; i++ {
		m, err := f.Match("nope")
		if err != nil {
			t.Fatal(err)
		}
		if m != nil {
			t.Fatalf("Match() = %v, want nil", m)
		}
	}

	stats := f.CacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, want the failed match to be cached", stats)
	}
}

func TestFinderFind(t *testing.T) {
	p := New().AnyNumber().AtLeastOne()
	f := NewFinderWithCache(p, 16)

	got, err := f.Find("123abc")
	if err != nil {
		t.Fatal(err)
	}
	if got != "123" {
		t.Errorf("Find() = %q, want %q", got, "123")
	}

	got, err = f.Find("abc")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("Find() = %q, want an empty string", got)
	}
}

func TestFinderSearch(t *testing.T) {
	p := New().AnyNumber().AtLeastOne()
	f := NewFinderWithCache(p, 16)

	m, err := f.Search("abc123def")
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Text() != "123" {
		t.Fatalf("Search() = %v, want a match for 123", m)
	}
}

func TestFinderFindAll(t *testing.T) {
	p := New().AnyNumber().AtLeastOne()
	f := NewFinderWithCache(p, 16)

	got, err := f.FindAll("a1b22c333", 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1", "22", "333"}; !slices.Equal(got, want) {
		t.Errorf("FindAll() = %v, want %v", got, want)
	}

	got, err = f.FindAll("a1b22c333", 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1", "22"}; !slices.Equal(got, want) {
		t.Errorf("FindAll(n=2) = %v, want %v", got, want)
	}
}

func TestFinderMatches(t *testing.T) {
	p := New().
		Raw(`(?P<key>\w+)`).
		Literal("=").
		Raw(`(?P<value>\w+)`)
	f := NewFinderWithCache(p, 16)

	ms, err := f.Matches("a=1, b=2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 2 {
		t.Fatalf("Matches() returned %d matches, want 2", len(ms))
	}

	key, _ := ms[1].GroupByName("key")
	value, _ := ms[1].GroupByName("value")

	if key != "b" || value != "2" {
		t.Errorf("second match = (%q, %q), want (b, 2)", key, value)
	}
}

func TestFinderSplit(t *testing.T) {
	p := New().Literal(",").Whitespace().Quantify(0, Unbounded)
	f := NewFinderWithCache(p, 16)

	got, err := f.Split("a, b,c", 0)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Split() = %v, want %v", got, want)
	}

	got, err = f.Split("a, b,c", 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"a", "b,c"}; !slices.Equal(got, want) {
		t.Errorf("Split(maxSplit=1) = %v, want %v", got, want)
	}
}

func TestFinderCompileError(t *testing.T) {
	f := NewFinderWithCache(New().Raw("("), 16)

	_, err := f.Match("x")

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want a CompileError", err)
	}
}

func TestFinderCompilesOnce(t *testing.T) {
	f := NewFinder(New().Raw("x"))

	a, err := f.Compiled()
	if err != nil {
		t.Fatal(err)
	}

	b, err := f.Compiled()
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("expected the compiled form to be reused")
	}
}

func TestCompiledFinder(t *testing.T) {
	cp, err := New().Literal("x").AnyNumber().Compile()
	if err != nil {
		t.Fatal(err)
	}

	f := NewCompiledFinder(cp)

	if f.Pattern() != nil {
		t.Error("expected no source pattern")
	}

	got, err := f.Find("x1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "x1" {
		t.Errorf("Find() = %q, want %q", got, "x1")
	}
}

func TestMatchCacheShared(t *testing.T) {
	ClearMatchCache()
	t.Cleanup(ClearMatchCache)

	p := New().Literal("shared").AnyNumber()

	// Two finders over equal patterns hit the same cache entries.
	if _, err := NewFinder(p).Match("shared7"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFinder(p).Match("shared7"); err != nil {
		t.Fatal(err)
	}

	stats := MatchCacheStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("MatchCacheStats() = %+v, want 1 hit, 1 miss", stats)
	}
}
