package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("hit on empty cache")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Fatalf("got %q, %v", got, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)

	got, _ := c.Get("k")
	if got != 2 {
		t.Fatalf("got %d", got)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestEvictsOldestOverCapacity(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok := c.Get(key); !ok {
			t.Fatalf("entry %q evicted", key)
		}
	}
}

func TestExpiredEntriesDropOnAccess(t *testing.T) {
	c := NewLRUCache[int](10, -time.Second)
	c.Set("k", 1)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d after expiry", c.Size())
	}
}

func TestDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("k", 1)
	c.Delete("k")
	c.Delete("k") // deleting again is a no-op

	if _, ok := c.Get("k"); ok {
		t.Fatal("deleted entry returned")
	}
}

func TestManyKeys(t *testing.T) {
	c := NewLRUCache[int](100, time.Minute)
	for i := 0; i < 250; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	if c.Size() != 100 {
		t.Fatalf("size = %d, want capacity 100", c.Size())
	}
	// The newest keys survive.
	if _, ok := c.Get("key-249"); !ok {
		t.Fatal("newest key evicted")
	}
}
