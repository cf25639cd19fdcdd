package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("dashboard:2026-01:EUR", "gennaio")
	c.Set("dashboard:2026-02:EUR", "febbraio")
	c.Set("dashboard:2026-03:EUR", "marzo")

	// Touch January so February becomes the eviction candidate.
	if _, ok := c.Get("dashboard:2026-01:EUR"); !ok {
		t.Fatal("January missing before eviction")
	}

	c.Set("dashboard:2026-04:EUR", "aprile")

	if _, ok := c.Get("dashboard:2026-02:EUR"); ok {
		t.Error("February survived, want it evicted as least recently used")
	}
	for _, key := range []string{"dashboard:2026-01:EUR", "dashboard:2026-03:EUR", "dashboard:2026-04:EUR"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s evicted, want it kept", key)
		}
	}
}

func TestGetReportsExpiredAsMissing(t *testing.T) {
	c := NewLRUCache[string](10, 30*time.Millisecond)

	c.Set("budgets:EUR", "x")
	if _, ok := c.Get("budgets:EUR"); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("budgets:EUR"); ok {
		t.Error("expired entry still served")
	}
	if n := c.Len(); n != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", n)
	}
}

func TestSetRefreshesDeadline(t *testing.T) {
	c := NewLRUCache[string](10, 50*time.Millisecond)

	c.Set("budgets:EUR", "old")
	time.Sleep(30 * time.Millisecond)
	c.Set("budgets:EUR", "new")
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first Set but only 30ms after the refresh.
	got, ok := c.Get("budgets:EUR")
	if !ok {
		t.Fatal("refreshed entry expired on the original deadline")
	}
	if got != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[string](100, 30*time.Millisecond)

	c.Set("dashboard:2026-01:EUR", "a")
	c.Set("dashboard:2026-01:USD", "b")
	c.Set("dashboard:2026-02:EUR", "c")

	time.Sleep(40 * time.Millisecond)
	c.Set("budgets:EUR", "fresh")

	if removed := c.CleanExpired(); removed != 3 {
		t.Errorf("CleanExpired() = %d, want 3", removed)
	}
	if n := c.Len(); n != 1 {
		t.Errorf("Len() = %d, want the fresh entry alone", n)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := NewLRUCache[string](100, time.Hour)

	c.Set("dashboard:2026-01:EUR", "a")
	c.Set("dashboard:2026-01:USD", "b")
	c.Set("dashboard:2026-02:EUR", "c")
	c.Set("budgets:EUR", "d")

	if removed := c.InvalidatePrefix("dashboard:2026-01"); removed != 2 {
		t.Errorf("InvalidatePrefix() = %d, want 2", removed)
	}
	if _, ok := c.Get("dashboard:2026-01:EUR"); ok {
		t.Error("January EUR view survived its invalidation")
	}
	if _, ok := c.Get("dashboard:2026-02:EUR"); !ok {
		t.Error("February view went with January's prefix")
	}
	if _, ok := c.Get("budgets:EUR"); !ok {
		t.Error("budgets view went with the dashboard prefix")
	}
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	m := NewManager()
	c := NewLRUCache[string](10, time.Millisecond)
	m.Register(c)

	c.Set("dashboard:2026-01:EUR", "a")

	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	m.Stop()

	if n := c.Len(); n != 0 {
		t.Errorf("Len() = %d after janitor pass, want 0", n)
	}
}

func TestManagerStopIsSafe(t *testing.T) {
	// Stop without start must not block, and a second Stop must not
	// panic on a closed channel.
	done := make(chan struct{})
	go func() {
		m := NewManager()
		m.Stop()

		m2 := NewManager()
		m2.StartCleanup(time.Hour)
		m2.Stop()
		m2.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked")
	}
}

func BenchmarkGetSet(b *testing.B) {
	c := NewLRUCache[string](1000, time.Hour)
	for i := 0; i < 1000; i++ {
		c.Set(fmt.Sprintf("dashboard:2026-01:%04d", i), "v")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("dashboard:2026-01:%04d", i%1100)
		if i%10 == 0 {
			c.Set(key, "v")
		} else {
			c.Get(key)
		}
	}
}
