package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTLExpiresOnRead(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTL[string, int](time.Hour, clk.Now)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Set("a", 1)
	clk.Advance(59 * time.Minute)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("get before expiry = %d, %v", v, ok)
	}
	clk.Advance(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss at expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not dropped, len = %d", c.Len())
	}
}

func TestTTLSetRestampsEntry(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := NewTTL[string, string](10*time.Second, clk.Now)
	c.Set("k", "old")
	clk.Advance(8 * time.Second)
	c.Set("k", "new")
	clk.Advance(8 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "new" {
		t.Fatalf("get = %q, %v", v, ok)
	}
}

func TestTTLDisabled(t *testing.T) {
	c := NewTTL[string, int](0, nil)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected disabled cache to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("disabled cache stored entries")
	}
}
