package postgres

import (
	"context"
	"fmt"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// CandleStore implements storage.CandleStore using PostgreSQL.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles atomically. Fails the entire batch
// on a duplicate (symbol, timestamp).
func (s *CandleStore) InsertBulk(ctx context.Context, symbol string, candles []domain.Candle) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO candles (symbol, ts, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, c := range candles {
		if _, err := tx.Exec(ctx, query,
			symbol, c.Timestamp, c.Open, c.High, c.Low, c.Close, c.Volume,
		); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert candle: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by timestamp.
func (s *CandleStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.Candle, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1
		ORDER BY ts ASC
	`
	return s.query(ctx, query, symbol)
}

// GetByTimeRange retrieves candles within [start, end] inclusive.
func (s *CandleStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]domain.Candle, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts ASC
	`
	return s.query(ctx, query, symbol, start, end)
}

func (s *CandleStore) query(ctx context.Context, query string, args ...any) ([]domain.Candle, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var out []domain.Candle
	for rows.Next() {
		var c domain.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
