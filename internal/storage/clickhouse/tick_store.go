package clickhouse

import (
	"context"
	"fmt"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// TickStore implements storage.TickStore using ClickHouse.
type TickStore struct {
	conn *Conn
}

// NewTickStore creates a new TickStore.
func NewTickStore(conn *Conn) *TickStore {
	return &TickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TickStore = (*TickStore)(nil)

// InsertBulk adds multiple ticks. Ticks are append-only; duplicates are
// not detected.
func (s *TickStore) InsertBulk(ctx context.Context, symbol string, ticks []domain.Tick) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO ticks (
			symbol, ts, price, size, side
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range ticks {
		err = batch.Append(
			symbol, uint64(t.Timestamp), t.Price, t.Size, string(t.Side),
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

// GetByTimeRange retrieves ticks within [start, end] (inclusive),
// ordered by timestamp ASC.
func (s *TickStore) GetByTimeRange(ctx context.Context, symbol string, start, end int64) ([]domain.Tick, error) {
	query := `
		SELECT ts, price, size, side
		FROM ticks
		WHERE symbol = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var t domain.Tick
		var ts uint64
		var side string

		err := rows.Scan(&ts, &t.Price, &t.Size, &side)
		if err != nil {
			return nil, fmt.Errorf("scan tick row: %w", err)
		}

		t.Timestamp = int64(ts)
		t.Side = domain.Side(side)
		ticks = append(ticks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tick rows: %w", err)
	}

	return ticks, nil
}
