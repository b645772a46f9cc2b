package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
	"tradelab/internal/storage/postgres"
)

func testSummary(runID string) *domain.RunSummary {
	return &domain.RunSummary{
		RunID:            runID,
		Symbol:           "SOLUSDT",
		Strategy:         "rsi_reversion_14_30_70",
		StartTime:        60_000,
		EndTime:          86_460_000,
		InitialBalance:   1_000,
		FinalBalance:     1_046.5,
		TotalTrades:      12,
		WinRate:          0.5833,
		NetPnL:           46.5,
		ProfitFactor:     1.62,
		WinLossRatio:     1.18,
		MaxDrawdown:      31.2,
		SharpeRatio:      1.9,
		AvgHoldingTimeMs: 5_400_000,
	}
}

func TestResultStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResultStore(pool)
	ctx := context.Background()

	want := testSummary("run-1")
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestResultStore_DuplicateRunID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSummary("run-1")))
	require.ErrorIs(t, store.Insert(ctx, testSummary("run-1")), storage.ErrDuplicateKey)
}

func TestResultStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResultStore(pool)
	_, err := store.GetByRunID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResultStore_GetBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResultStore(pool)
	ctx := context.Background()

	for _, id := range []string{"run-c", "run-a", "run-b"} {
		require.NoError(t, store.Insert(ctx, testSummary(id)))
	}
	other := testSummary("run-x")
	other.Symbol = "ETHUSDT"
	require.NoError(t, store.Insert(ctx, other))

	got, err := store.GetBySymbol(ctx, "SOLUSDT")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "run-a", got[0].RunID)
	require.Equal(t, "run-b", got[1].RunID)
	require.Equal(t, "run-c", got[2].RunID)
}

func TestResultStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewResultStore(pool)
	ctx := context.Background()

	require.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	require.ErrorIs(t, store.Insert(ctx, &domain.RunSummary{Symbol: "SOLUSDT"}), storage.ErrInvalidInput)
}
