package postgres

import (
	"context"
	"fmt"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
)

// ResultStore implements storage.ResultStore using PostgreSQL.
type ResultStore struct {
	pool *Pool
}

// NewResultStore creates a new ResultStore.
func NewResultStore(pool *Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

var _ storage.ResultStore = (*ResultStore)(nil)

const summaryColumns = `
	run_id, symbol, strategy, start_time, end_time,
	initial_balance, final_balance, total_trades, win_rate, net_pnl,
	profit_factor, win_loss_ratio, max_drawdown, sharpe_ratio, avg_holding_time_ms
`

// Insert adds a run summary. Returns ErrDuplicateKey if the run id
// already exists.
func (s *ResultStore) Insert(ctx context.Context, sum *domain.RunSummary) error {
	if sum == nil || sum.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO run_summaries (` + summaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.pool.Exec(ctx, query,
		sum.RunID, sum.Symbol, sum.Strategy, sum.StartTime, sum.EndTime,
		sum.InitialBalance, sum.FinalBalance, sum.TotalTrades, sum.WinRate, sum.NetPnL,
		sum.ProfitFactor, sum.WinLossRatio, sum.MaxDrawdown, sum.SharpeRatio, sum.AvgHoldingTimeMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByRunID retrieves one summary. Returns ErrNotFound if absent.
func (s *ResultStore) GetByRunID(ctx context.Context, runID string) (*domain.RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM run_summaries WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	sum, err := scanSummary(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query run summary: %w", err)
	}
	return sum, nil
}

// GetBySymbol retrieves all summaries for a symbol, ordered by run id.
func (s *ResultStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.RunSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM run_summaries WHERE symbol = $1 ORDER BY run_id ASC`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query run summaries: %w", err)
	}
	defer rows.Close()

	var out []*domain.RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*domain.RunSummary, error) {
	var sum domain.RunSummary
	err := row.Scan(
		&sum.RunID, &sum.Symbol, &sum.Strategy, &sum.StartTime, &sum.EndTime,
		&sum.InitialBalance, &sum.FinalBalance, &sum.TotalTrades, &sum.WinRate, &sum.NetPnL,
		&sum.ProfitFactor, &sum.WinLossRatio, &sum.MaxDrawdown, &sum.SharpeRatio, &sum.AvgHoldingTimeMs,
	)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}
