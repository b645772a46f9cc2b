package postgres

import (
	"context"
	"fmt"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// InsertBulk adds a run's ledger entries atomically.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []domain.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}
	for _, t := range trades {
		if t.RunID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO closed_trades (
			run_id, symbol, entry_time, entry_price, exit_time, exit_price,
			direction, size, pnl_gross, fees, pnl_net, exit_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for _, t := range trades {
		if _, err := tx.Exec(ctx, query,
			t.RunID, t.Symbol, t.EntryTime, t.EntryPrice, t.ExitTime, t.ExitPrice,
			string(t.Direction), t.Size, t.PnLGross, t.Fees, t.PnLNet, t.ExitReason,
		); err != nil {
			return fmt.Errorf("insert closed trade: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run's ledger ordered by exit time.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) ([]domain.ClosedTrade, error) {
	query := `
		SELECT run_id, symbol, entry_time, entry_price, exit_time, exit_price,
		       direction, size, pnl_gross, fees, pnl_net, exit_reason
		FROM closed_trades
		WHERE run_id = $1
		ORDER BY exit_time ASC
	`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query closed trades: %w", err)
	}
	defer rows.Close()

	var out []domain.ClosedTrade
	for rows.Next() {
		var t domain.ClosedTrade
		var direction string
		if err := rows.Scan(
			&t.RunID, &t.Symbol, &t.EntryTime, &t.EntryPrice, &t.ExitTime, &t.ExitPrice,
			&direction, &t.Size, &t.PnLGross, &t.Fees, &t.PnLNet, &t.ExitReason,
		); err != nil {
			return nil, fmt.Errorf("scan closed trade: %w", err)
		}
		t.Direction = domain.Direction(direction)
		out = append(out, t)
	}
	return out, rows.Err()
}
