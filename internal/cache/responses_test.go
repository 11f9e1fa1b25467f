package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestDigest(t *testing.T) {
	a := Digest("report", "same text")
	b := Digest("question", "same text")
	if a == b {
		t.Fatal("expected different digests for different kinds")
	}
	if a != Digest("report", "same text") {
		t.Fatal("expected stable digest for identical input")
	}
}

func TestResponseCache_GetSet(t *testing.T) {
	c := NewResponseCache(10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("k", "generated text")
	got, ok := c.Get("k")
	if !ok || got != "generated text" {
		t.Fatalf("got %q ok=%v, want hit with stored text", got, ok)
	}

	c.Set("k", "replaced")
	if got, _ := c.Get("k"); got != "replaced" {
		t.Fatalf("got %q, want replaced value", got)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	c := NewResponseCache(10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after TTL")
	}
	c.Set("k2", "v2")
	if c.CleanExpired() != 0 {
		t.Fatal("fresh entry must survive cleanup")
	}
}

func TestResponseCache_Eviction(t *testing.T) {
	c := NewResponseCache(3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}

	if c.Size() != 3 {
		t.Fatalf("size = %d, want 3 after eviction", c.Size())
	}
	if _, ok := c.Get("k0"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Fatal("expected newest entry to survive")
	}
}
