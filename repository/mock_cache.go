package repository

import (
	"context"
	"sync"
	"time"
)

// MockCache is an in-process CacheRepository. Entries expire lazily on Get.
type MockCache struct {
	mu   sync.Mutex
	Data map[string]string
	exp  map[string]time.Time
	now  func() time.Time
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data: make(map[string]string),
		exp:  make(map[string]time.Time),
		now:  time.Now,
	}
}

func (m *MockCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deadline, ok := m.exp[key]; ok && m.now().After(deadline) {
		delete(m.Data, key)
		delete(m.exp, key)
		return "", false
	}
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Data[key] = value
	if ttl > 0 {
		m.exp[key] = m.now().Add(ttl)
	} else {
		delete(m.exp, key)
	}
	return nil
}
