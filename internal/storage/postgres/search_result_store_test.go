package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

func testRecord(runID string, entry, exit float64, split domain.Split) *domain.SearchResultRecord {
	return &domain.SearchResultRecord{
		RunID:            runID,
		Season:           "2023-24",
		EntryThreshold:   entry,
		ExitThreshold:    exit,
		Split:            split,
		GameCount:        10,
		NetProfitDollars: 125.5,
		ProfitPerGame:    12.55,
		TradeCount:       30,
		WinRate:          0.6,
	}
}

func TestSearchResultStore_InsertBulkAndGetByRunID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSearchResultStore(pool)
	ctx := context.Background()

	records := []*domain.SearchResultRecord{
		testRecord("run1", 0.15, 0.04, domain.SplitTrain),
		testRecord("run1", 0.10, 0.02, domain.SplitValid),
		testRecord("run1", 0.10, 0.02, domain.SplitTrain),
		testRecord("run2", 0.10, 0.02, domain.SplitTrain),
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	retrieved, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	// Ordered by (exit, entry, split)
	assert.Equal(t, domain.SplitTrain, retrieved[0].Split)
	assert.Equal(t, 0.10, retrieved[0].EntryThreshold)
	assert.Equal(t, domain.SplitValid, retrieved[1].Split)
	assert.Equal(t, 0.04, retrieved[2].ExitThreshold)

	assert.Equal(t, 125.5, retrieved[0].NetProfitDollars)
	assert.Greater(t, retrieved[0].CreatedAt, int64(0))
}

func TestSearchResultStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSearchResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.SearchResultRecord{
		testRecord("run1", 0.10, 0.02, domain.SplitTrain),
	}))

	err := store.InsertBulk(ctx, []*domain.SearchResultRecord{
		testRecord("run1", 0.10, 0.02, domain.SplitTrain),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSearchResultStore_ProfitFactorNullRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSearchResultStore(pool)
	ctx := context.Background()

	withPF := testRecord("run1", 0.10, 0.02, domain.SplitTrain)
	withPF.ProfitFactor = ptr(2.5)
	withoutPF := testRecord("run1", 0.10, 0.02, domain.SplitValid)

	require.NoError(t, store.InsertBulk(ctx, []*domain.SearchResultRecord{withPF, withoutPF}))

	retrieved, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	require.NotNil(t, retrieved[0].ProfitFactor)
	assert.Equal(t, 2.5, *retrieved[0].ProfitFactor)
	assert.Nil(t, retrieved[1].ProfitFactor)
}

func TestSearchResultStore_ListRunIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSearchResultStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.SearchResultRecord{
		testRecord("run1", 0.10, 0.02, domain.SplitTrain),
		testRecord("run2", 0.10, 0.02, domain.SplitTrain),
	}))

	runs, err := store.ListRunIDs(ctx, "2023-24")
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = store.ListRunIDs(ctx, "2020-21")
	require.NoError(t, err)
	assert.Empty(t, runs)
}
