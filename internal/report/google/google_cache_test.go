package google

import (
	"context"
	"testing"
	"time"
)

func TestRowCacheExpiration(t *testing.T) {
	c := &Client{
		cacheValidDuration: 100 * time.Millisecond, // Short TTL for testing
	}

	// Initial state: cache should be expired
	c.mu.Lock()
	isValid := time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if isValid {
		t.Error("cache should start expired")
	}

	// Manually set cache to valid state
	c.mu.Lock()
	c.cachedRowCount = 10
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	// Cache should be valid now
	c.mu.Lock()
	isValid = time.Now().Before(c.cacheExpiresAt)
	rowCount := c.cachedRowCount
	c.mu.Unlock()
	if !isValid {
		t.Error("cache should be valid immediately after update")
	}
	if rowCount != 10 {
		t.Errorf("cached row count should be 10, got %d", rowCount)
	}

	// Wait for cache to expire
	time.Sleep(150 * time.Millisecond)

	c.mu.Lock()
	isValid = time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if isValid {
		t.Error("cache should be expired after TTL")
	}
}

func TestInvalidateRowCache(t *testing.T) {
	c := &Client{
		cacheValidDuration: 10 * time.Minute,
	}

	c.mu.Lock()
	c.cachedRowCount = 42
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	c.invalidateRowCache()

	c.mu.Lock()
	rowCount := c.cachedRowCount
	isValid := time.Now().Before(c.cacheExpiresAt)
	c.mu.Unlock()
	if rowCount != 0 {
		t.Errorf("row count should be 0 after invalidation, got %d", rowCount)
	}
	if isValid {
		t.Error("cache should be expired after invalidation")
	}
}

func TestCachedAppendsAdvanceRowNumber(t *testing.T) {
	c := &Client{
		cacheValidDuration: 10 * time.Minute,
	}

	// Prime the cache as a successful read would
	c.mu.Lock()
	c.cachedRowCount = 5
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()

	// With a fresh cache nextRowNumber never touches the service (svc is nil,
	// so any API call would panic).
	for want := 6; want <= 8; want++ {
		got, err := c.nextRowNumber(context.Background())
		if err != nil {
			t.Fatalf("nextRowNumber() error = %v", err)
		}
		if got != want {
			t.Errorf("nextRowNumber() = %d, want %d", got, want)
		}
	}
}
