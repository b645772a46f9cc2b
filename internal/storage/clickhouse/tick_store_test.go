package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tradelab/internal/domain"
	"tradelab/internal/storage"
	clickhousestore "tradelab/internal/storage/clickhouse"
)

func TestTickStore_RoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhousestore.NewTickStore(conn)
	ctx := context.Background()

	ticks := []domain.Tick{
		{Timestamp: 60_000, Price: 100, Size: 1.5, Side: domain.SideBuy},
		{Timestamp: 60_500, Price: 100.1, Size: 2, Side: domain.SideSell},
		{Timestamp: 61_000, Price: 100.2, Size: 0.5, Side: domain.SideBuy},
	}
	require.NoError(t, store.InsertBulk(ctx, "SOLUSDT", ticks))

	got, err := store.GetByTimeRange(ctx, "SOLUSDT", 0, 120_000)
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.Equal(t, int64(60_000), got[0].Timestamp)
	require.Equal(t, domain.SideBuy, got[0].Side)
	require.Equal(t, domain.SideSell, got[1].Side)
	require.Equal(t, 2.0, got[1].Size)
}

func TestTickStore_EqualTimestampsKept(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhousestore.NewTickStore(conn)
	ctx := context.Background()

	// Exchanges emit distinct trades at the same millisecond; the tick
	// store is append-only and keeps both.
	require.NoError(t, store.InsertBulk(ctx, "SOLUSDT", []domain.Tick{
		{Timestamp: 60_000, Price: 100, Size: 1, Side: domain.SideBuy},
		{Timestamp: 60_000, Price: 100, Size: 2, Side: domain.SideBuy},
	}))

	got, err := store.GetByTimeRange(ctx, "SOLUSDT", 60_000, 60_000)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestTickStore_TimeRangeBounds(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhousestore.NewTickStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "SOLUSDT", []domain.Tick{
		{Timestamp: 60_000, Price: 100, Size: 1, Side: domain.SideBuy},
		{Timestamp: 120_000, Price: 101, Size: 1, Side: domain.SideSell},
		{Timestamp: 180_000, Price: 102, Size: 1, Side: domain.SideBuy},
	}))

	got, err := store.GetByTimeRange(ctx, "SOLUSDT", 61_000, 179_000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(120_000), got[0].Timestamp)
}

func TestTickStore_EmptySymbolRejected(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhousestore.NewTickStore(conn)
	err := store.InsertBulk(context.Background(), "", []domain.Tick{{Timestamp: 60_000, Price: 1, Size: 1, Side: domain.SideBuy}})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
