package remote

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/vovakirdan/flagquest/internal/progress"
)

// MemoryStore keeps records in process. Used for local play and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	results map[int]map[string]Result
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		results: make(map[int]map[string]Result),
		now:     time.Now,
	}
}

// Ensure implements Store.
func (m *MemoryStore) Ensure(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[userID]; !ok {
		m.records[userID] = emptyRecord(userID)
	}
	return nil
}

// Read implements Store.
func (m *MemoryStore) Read(_ context.Context, userID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[userID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r.Clone(), nil
}

// Patch implements Store.
func (m *MemoryStore) Patch(_ context.Context, userID string, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[userID]
	if !ok {
		return ErrNotFound
	}
	p.apply(&r)
	m.records[userID] = r
	return nil
}

// ReplaceProgress implements Store.
func (m *MemoryStore) ReplaceProgress(_ context.Context, userID string, prog map[string]progress.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[userID]
	if !ok {
		return ErrNotFound
	}
	r.Progress = prog
	m.records[userID] = r.Clone()
	return nil
}

// SubmitResult implements Store.
func (m *MemoryStore) SubmitResult(_ context.Context, userID string, levelID, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.results[levelID]
	if !ok {
		level = make(map[string]Result)
		m.results[levelID] = level
	}
	res := level[userID]
	res.UserID = userID
	res.LevelID = levelID
	res.BestScore = max(res.BestScore, score)
	res.PlaysCount++
	res.UpdatedAt = m.now().UTC()
	level[userID] = res
	return nil
}

// TopResults implements Store.
func (m *MemoryStore) TopResults(_ context.Context, levelID, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Collect(maps.Values(m.results[levelID]))
	slices.SortFunc(out, func(a, b Result) int {
		if c := cmp.Compare(b.BestScore, a.BestScore); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
