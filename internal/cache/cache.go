// Package cache provides a small generic TTL-LRU used to memoize dashboard
// summaries between mutations.
package cache

import "time"

// Cache is the read/write surface handlers use.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Clear()
	Size() int
}

// Cleaner is implemented by caches that support expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the periodic expiry sweep for registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
}

func NewManager() *Manager {
	return &Manager{stopCleanup: make(chan struct{})}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup sweeps all registered caches on the given interval until
// Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, c := range m.caches {
					c.CleanExpired()
				}
			case <-m.stopCleanup:
				return
			}
		}
	}()
}

func (m *Manager) Stop() {
	close(m.stopCleanup)
}
