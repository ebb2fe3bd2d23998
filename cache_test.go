package rex

import (
	"strconv"
	"testing"
)

func TestCacheGetAdd(t *testing.T) {
	c := NewCache[string, int](4)

	if _, ok := c.Get("a"); ok {
		t.Error("expected a miss on an empty cache")
	}

	c.Add("a", 1)

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %t), want (1, true)", v, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Evictions != 0 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, 0 evictions", stats)
	}
}

func TestCacheFirstWriterWins(t *testing.T) {
	c := NewCache[string, int](4)

	c.Add("a", 1)
	c.Add("a", 2)

	if v, _ := c.Get("a"); v != 1 {
		t.Errorf("Get(a) = %d, want the first value 1", v)
	}
	if got := c.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache[string, int](2)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// The oldest entry goes first.
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to survive")
	}

	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCacheDuplicateAddKeepsRecency(t *testing.T) {
	c := NewCache[string, int](2)

	c.Add("a", 1)
	c.Add("b", 2)

	// A duplicate add changes nothing, so a stays least recently used.
	c.Add("a", 3)
	c.Add("c", 4)

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if v, ok := c.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = (%d, %t), want (2, true)", v, ok)
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := NewCache[string, int](2)

	c.Add("a", 1)
	c.Add("b", 2)

	// Touching a makes b the least recently used entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a hit for a")
	}

	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache[string, int](2)

	c.Add("a", 1)
	c.Get("a")
	c.Get("missing")
	c.Add("b", 2)
	c.Add("c", 3)

	c.Clear()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}

	if stats := c.Stats(); stats != (CacheStats{}) {
		t.Errorf("Stats() = %+v, want zeroed counters", stats)
	}

	// The cache stays usable after a reset.
	c.Add("a", 7)
	if v, ok := c.Get("a"); !ok || v != 7 {
		t.Errorf("Get(a) = (%d, %t), want (7, true)", v, ok)
	}
}

func TestCacheDefaultSize(t *testing.T) {
	c := NewCache[string, int](0)

	if got := c.MaxSize(); got != DefaultCacheSize {
		t.Errorf("MaxSize() = %d, want %d", got, DefaultCacheSize)
	}
}

func TestCacheBounded(t *testing.T) {
	c := NewCache[string, int](8)

	for i := 0; i < 100; i++ {
		c.Add(strconv.Itoa(i), i)
	}

	if got := c.Len(); got != 8 {
		t.Errorf("Len() = %d, want 8", got)
	}
	if got := c.Stats().Evictions; got != 92 {
		t.Errorf("Evictions = %d, want 92", got)
	}
}
