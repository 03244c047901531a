package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// Cache is a namespaced string key-value store.
type Cache interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Cache key purposes.
const (
	PurposeProgress   = "progress"
	PurposeHints      = "hints"
	PurposeCoins      = "coins"
	PurposeHearts     = "hearts"
	PurposeHintPopup  = "hint_popup_seen"
	PurposeLanguage   = "preferred_language"
	PurposeLastSpinAt = "last_spin_at"
)

// DeviceIDKey holds the anonymous per-device id.
const DeviceIDKey = "flagquest:device:id"

// Key namespaces a purpose under an identity.
func Key(identity, purpose string) string {
	return "flagquest:" + strings.TrimSpace(identity) + ":" + purpose
}

// GetJSON decodes the value under key into v. found is false for a missing
// key; a corrupt value returns an error and leaves v untouched.
func GetJSON(c Cache, key string, v any) (bool, error) {
	raw, ok, err := c.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("storage: corrupt value at %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(c Cache, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: cannot encode %s: %w", key, err)
	}
	return c.Set(key, string(data))
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

// Get implements Cache.
func (m *MemoryCache) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Cache.
func (m *MemoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

var (
	_ Cache = (*Store)(nil)
	_ Cache = (*MemoryCache)(nil)
)
