// Package storage defines the persistence contracts for historical
// market data and backtest output. The decision/backtest core itself
// performs no I/O; these interfaces are the boundary through which
// external collaborators supply candles/ticks and persist results.
package storage

import (
	"context"

	"tradelab/internal/domain"
)

// CandleStore provides access to historical candles per symbol.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails the entire batch on a
	// duplicate (symbol, timestamp).
	InsertBulk(ctx context.Context, symbol string, candles []domain.Candle) error

	// GetBySymbol retrieves all candles for a symbol, ordered by
	// timestamp ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.Candle, error)

	// GetByTimeRange retrieves candles within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]domain.Candle, error)
}

// TickStore provides access to historical trade ticks per symbol.
type TickStore interface {
	// InsertBulk adds multiple ticks. Ticks are append-only; duplicates
	// are not detected (exchanges emit distinct trades at equal
	// timestamps).
	InsertBulk(ctx context.Context, symbol string, ticks []domain.Tick) error

	// GetByTimeRange retrieves ticks within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]domain.Tick, error)
}

// TradeStore provides access to the closed-trade ledger.
type TradeStore interface {
	// InsertBulk adds the full ledger of a run atomically.
	InsertBulk(ctx context.Context, trades []domain.ClosedTrade) error

	// GetByRunID retrieves all ledger entries of a run, ordered by exit
	// time ASC.
	GetByRunID(ctx context.Context, runID string) ([]domain.ClosedTrade, error)
}

// ResultStore provides access to run summaries.
type ResultStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if the run id
	// already exists.
	Insert(ctx context.Context, s *domain.RunSummary) error

	// GetByRunID retrieves one summary. Returns ErrNotFound if absent.
	GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// GetBySymbol retrieves all summaries for a symbol.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error)
}
