package cache

import (
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[int], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", 3)
	clock.t = clock.t.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != 3 {
		t.Fatalf("b = %d, %v", v, ok)
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestDeleteFunc(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	for _, k := range []string{"cabinet|2024-03", "cabinet|2024-04", "asset|2024-03"} {
		c.Set(k, 1)
	}
	n := c.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, "cabinet|") })
	if n != 2 || c.Size() != 1 {
		t.Fatalf("removed %d, size %d", n, c.Size())
	}
	c.Delete("asset|2024-03")
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestManagerCleansRegisteredCaches(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", 1)
	c.Set("b", 2)
	clock.t = clock.t.Add(2 * time.Second)
	c.Set("c", 3)

	m := NewManager()
	m.Register(c)
	if n := m.CleanNow(); n != 2 {
		t.Fatalf("cleaned %d, want 2", n)
	}

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
