package memory

import (
	"context"
	"sort"
	"sync"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string][]domain.ClosedTrade // keyed by run id
}

// NewTradeStore creates an in-memory closed-trade ledger store.
func NewTradeStore() *TradeStore {
	return &TradeStore{data: make(map[string][]domain.ClosedTrade)}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk appends ledger entries.
func (s *TradeStore) InsertBulk(_ context.Context, trades []domain.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range trades {
		s.data[t.RunID] = append(s.data[t.RunID], t)
	}
	return nil
}

// GetByRunID retrieves a run's ledger ordered by exit time.
func (s *TradeStore) GetByRunID(_ context.Context, runID string) ([]domain.ClosedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ClosedTrade, len(s.data[runID]))
	copy(out, s.data[runID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExitTime < out[j].ExitTime
	})
	return out, nil
}

// ResultStore is an in-memory implementation of storage.ResultStore.
type ResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.RunSummary
}

// NewResultStore creates an in-memory run summary store.
func NewResultStore() *ResultStore {
	return &ResultStore{data: make(map[string]*domain.RunSummary)}
}

var _ storage.ResultStore = (*ResultStore)(nil)

// Insert adds a run summary, rejecting duplicate run ids.
func (s *ResultStore) Insert(_ context.Context, sum *domain.RunSummary) error {
	if sum == nil || sum.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[sum.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	cp := *sum
	s.data[sum.RunID] = &cp
	return nil
}

// GetByRunID retrieves one summary or ErrNotFound.
func (s *ResultStore) GetByRunID(_ context.Context, runID string) (*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *sum
	return &cp, nil
}

// GetBySymbol retrieves all summaries for a symbol, ordered by run id
// for determinism.
func (s *ResultStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.RunSummary
	for _, sum := range s.data {
		if sum.Symbol == symbol {
			cp := *sum
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}
