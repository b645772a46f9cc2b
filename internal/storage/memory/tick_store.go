package memory

import (
	"context"
	"sort"
	"sync"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// TickStore is an in-memory implementation of storage.TickStore.
type TickStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Tick // keyed by symbol, kept sorted
}

// NewTickStore creates an in-memory tick store.
func NewTickStore() *TickStore {
	return &TickStore{data: make(map[string][]domain.Tick)}
}

var _ storage.TickStore = (*TickStore)(nil)

// InsertBulk appends ticks for a symbol.
func (s *TickStore) InsertBulk(_ context.Context, symbol string, ticks []domain.Tick) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[symbol] = append(s.data[symbol], ticks...)
	sort.SliceStable(s.data[symbol], func(i, j int) bool {
		return s.data[symbol][i].Timestamp < s.data[symbol][j].Timestamp
	})
	return nil
}

// GetByTimeRange retrieves ticks within [start, end] inclusive, ordered
// by timestamp.
func (s *TickStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]domain.Tick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Tick
	for _, t := range s.data[symbol] {
		if t.Timestamp >= start && t.Timestamp <= end {
			out = append(out, t)
		}
	}
	return out, nil
}
