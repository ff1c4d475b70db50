package cache

import (
	"testing"
	"time"
)

func TestGetPutBasic(t *testing.T) {
	c := New(2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	if v, ok := c.Get("a"); !ok || v.(int) != 1 {
		t.Fatalf("expected a=1, got %v ok=%v", v, ok)
	}
}

func TestEvictionOnCapacity(t *testing.T) {
	c := New(2, time.Minute)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts a, since b was accessed via Put after a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c present")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10, time.Millisecond)
	c.Put("a", 1)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expected expiry")
	}
}
