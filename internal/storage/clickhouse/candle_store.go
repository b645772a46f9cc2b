package clickhouse

import (
	"context"
	"fmt"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails the entire batch on a
// duplicate (symbol, timestamp). MergeTree does not enforce uniqueness,
// so duplicates are checked explicitly before the batch is sent.
func (s *CandleStore) InsertBulk(ctx context.Context, symbol string, candles []domain.Candle) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(candles))
	for _, c := range candles {
		if _, exists := seen[c.Timestamp]; exists {
			return storage.ErrDuplicateKey
		}
		seen[c.Timestamp] = struct{}{}
	}

	for _, c := range candles {
		exists, err := s.exists(ctx, symbol, c.Timestamp)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			symbol, ts, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			symbol, uint64(c.Timestamp),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbol retrieves all candles for a symbol, ordered by timestamp ASC.
func (s *CandleStore) GetBySymbol(ctx context.Context, symbol string) ([]domain.Candle, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetByTimeRange retrieves candles within [start, end] (inclusive).
func (s *CandleStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]domain.Candle, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// exists checks if a candle with the given key exists.
func (s *CandleStore) exists(ctx context.Context, symbol string, ts int64) (bool, error) {
	query := `SELECT count(*) FROM candles WHERE symbol = ? AND ts = ?`

	var count uint64
	err := s.conn.QueryRow(ctx, query, symbol, uint64(ts)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanCandles scans multiple rows.
func scanCandles(rows chRows) ([]domain.Candle, error) {
	var candles []domain.Candle

	for rows.Next() {
		var c domain.Candle
		var ts uint64

		err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume)
		if err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.Timestamp = int64(ts)
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
