package rex

import (
	"github.com/magnetde/rex/engine"
)

// DefaultMatchCacheSize bounds the shared match cache.
const DefaultMatchCacheSize = 1000

// matchKey identifies a cached match result by the compiled pattern and the
// input it was run against.
type matchKey struct {
	expr  string
	flags int
	input string
}

// matchCache is shared by every finder not constructed with its own cache.
var matchCache = NewCache[matchKey, *engine.Match](DefaultMatchCacheSize)

// MatchCacheStats returns a snapshot of the shared match cache counters.
func MatchCacheStats() CacheStats {
	return matchCache.Stats()
}

// ClearMatchCache drops all cached match results and resets the counters of
// the shared match cache.
func ClearMatchCache() {
	matchCache.Clear()
}

// Finder runs a pattern against inputs, compiling it once on first use and
// caching anchored match results. Finders built from equal patterns share
// cached results, since cache keys derive from the compiled form and the
// input. A Finder is not safe for concurrent use; create one per goroutine
// from the same pattern instead.
type Finder struct {
	pattern  *Pattern
	compiled *engine.Pattern
	cache    *Cache[matchKey, *engine.Match]
}

// NewFinder creates a finder for the pattern, backed by the shared match
// cache.
func NewFinder(p *Pattern) *Finder {
	return &Finder{pattern: p, cache: matchCache}
}

// NewCompiledFinder creates a finder around an already compiled pattern.
func NewCompiledFinder(cp *engine.Pattern) *Finder {
	return &Finder{compiled: cp, cache: matchCache}
}

// NewFinderWithCache creates a finder with a private match cache of the
// given capacity.
func NewFinderWithCache(p *Pattern, cacheSize int) *Finder {
	return &Finder{
		pattern: p,
		cache:   NewCache[matchKey, *engine.Match](cacheSize),
	}
}

// Pattern returns the pattern the finder was created from, or nil for
// finders around precompiled patterns.
func (f *Finder) Pattern() *Pattern {
	return f.pattern
}

// Compiled returns the compiled form, compiling the pattern on first use.
func (f *Finder) Compiled() (*engine.Pattern, error) {
	if f.compiled == nil {
		cp, err := f.pattern.Compile()
		if err != nil {
			return nil, err
		}

		f.compiled = cp
	}

	return f.compiled, nil
}

// CacheStats returns a snapshot of the counters of the finder's match
// cache.
func (f *Finder) CacheStats() CacheStats {
	return f.cache.Stats()
}

// Match matches the pattern against the start of the input. It returns nil
// when the pattern does not match there; both outcomes are cached.
func (f *Finder) Match(s string) (*engine.Match, error) {
	cp, err := f.Compiled()
	if err != nil {
		return nil, err
	}

	key := matchKey{expr: cp.Expr(), flags: cp.Flags(), input: s}
	if m, ok := f.cache.Get(key); ok {
		return m, nil
	}

	m := cp.MatchAt(s, 0)
	f.cache.Add(key, m)

	return m, nil
}

// Find returns the text matched at the start of the input, or the empty
// string when the pattern does not match.
func (f *Finder) Find(s string) (string, error) {
	m, err := f.Match(s)
	if err != nil || m == nil {
		return "", err
	}

	return m.Text(), nil
}

// Search returns the first match anywhere in the input, or nil. Search
// results are not cached, since the cache only holds anchored matches.
func (f *Finder) Search(s string) (*engine.Match, error) {
	cp, err := f.Compiled()
	if err != nil {
		return nil, err
	}

	return cp.Search(s, 0), nil
}

// Matches returns all non-overlapping matches in the input, scanning left
// to right. Limits above zero cap the number of matches.
func (f *Finder) Matches(s string, n int) ([]*engine.Match, error) {
	cp, err := f.Compiled()
	if err != nil {
		return nil, err
	}

	return cp.FindAll(s, n), nil
}

// FindAll returns the texts of all non-overlapping matches in the input.
// Limits above zero cap the number of matches.
func (f *Finder) FindAll(s string, n int) ([]string, error) {
	ms, err := f.Matches(s, n)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(ms))
	for i, m := range ms {
		texts[i] = m.Text()
	}

	return texts, nil
}

// Split splits the input around matches of the pattern. Limits above zero
// cap the number of splits, leaving the remainder in the final element.
func (f *Finder) Split(s string, maxSplit int) ([]string, error) {
	cp, err := f.Compiled()
	if err != nil {
		return nil, err
	}

	return cp.Split(s, maxSplit), nil
}
