// Package cache provides the in-process caches backing the dashboard
// and geocoder, plus the janitor that expires them.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

// Cleaner is the part of a cache the janitor needs.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs one janitor goroutine over any number of caches.
type Manager struct {
	mu      sync.Mutex
	caches  []Cleaner
	started bool

	stop chan struct{}
	done chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup rotation.
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup launches the janitor, which sweeps every registered
// cache once per interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if n := m.clean(); n > 0 {
				slog.Debug("Cache cleanup removed expired entries", "count", n)
			}
		}
	}
}

func (m *Manager) clean() int {
	m.mu.Lock()
	caches := make([]Cleaner, len(m.caches))
	copy(caches, m.caches)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop halts the janitor and waits for it to exit. Safe to call when
// cleanup never started, and safe to call twice.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()

	if !started {
		return
	}
	close(m.stop)
	<-m.done
}
