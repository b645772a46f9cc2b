// Package memory provides in-memory storage implementations, used by
// tests and by CLI runs that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Candle // keyed by symbol, kept sorted
	keys map[string]struct{}        // (symbol, timestamp) duplicate guard
}

// NewCandleStore creates an in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string][]domain.Candle),
		keys: make(map[string]struct{}),
	}
}

var _ storage.CandleStore = (*CandleStore)(nil)

func candleKey(symbol string, ts int64) string {
	return fmt.Sprintf("%s|%d", symbol, ts)
}

// InsertBulk adds multiple candles. Fails the entire batch on a
// duplicate (symbol, timestamp), including intra-batch duplicates.
func (s *CandleStore) InsertBulk(_ context.Context, symbol string, candles []domain.Candle) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(candles))
	for _, c := range candles {
		key := candleKey(symbol, c.Timestamp)
		if _, exists := s.keys[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batch[key]; exists {
			return storage.ErrDuplicateKey
		}
		batch[key] = struct{}{}
	}

	for _, c := range candles {
		s.keys[candleKey(symbol, c.Timestamp)] = struct{}{}
		s.data[symbol] = append(s.data[symbol], c)
	}
	sort.Slice(s.data[symbol], func(i, j int) bool {
		return s.data[symbol][i].Timestamp < s.data[symbol][j].Timestamp
	})
	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by timestamp.
func (s *CandleStore) GetBySymbol(_ context.Context, symbol string) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Candle, len(s.data[symbol]))
	copy(out, s.data[symbol])
	return out, nil
}

// GetByTimeRange retrieves candles within [start, end] inclusive.
func (s *CandleStore) GetByTimeRange(_ context.Context, symbol string, start, end int64) ([]domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Candle
	for _, c := range s.data[symbol] {
		if c.Timestamp >= start && c.Timestamp <= end {
			out = append(out, c)
		}
	}
	return out, nil
}
