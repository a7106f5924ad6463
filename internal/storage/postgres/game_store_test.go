package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

func TestGameStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	game := &domain.Game{
		GameID:    "2023-10-24-DEN-LAL",
		Season:    "2023-24",
		HomeTeam:  "DEN",
		AwayTeam:  "LAL",
		StartTime: 1698192000000,
		FinalHome: 119,
		FinalAway: 107,
		HomeWon:   true,
	}

	err := store.Insert(ctx, game)
	require.NoError(t, err)

	retrieved, err := store.GetByID(ctx, "2023-10-24-DEN-LAL")
	require.NoError(t, err)

	assert.Equal(t, game.GameID, retrieved.GameID)
	assert.Equal(t, game.Season, retrieved.Season)
	assert.Equal(t, game.HomeTeam, retrieved.HomeTeam)
	assert.Equal(t, game.FinalHome, retrieved.FinalHome)
	assert.True(t, retrieved.HomeWon)
}

func TestGameStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	game := &domain.Game{GameID: "g1", Season: "2023-24", HomeTeam: "BOS", AwayTeam: "MIA"}

	require.NoError(t, store.Insert(ctx, game))

	err := store.Insert(ctx, game)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestGameStore_GetByID_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGameStore_GetBySeason(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	games := []*domain.Game{
		{GameID: "g2", Season: "2023-24", HomeTeam: "BOS", AwayTeam: "MIA", StartTime: 200},
		{GameID: "g1", Season: "2023-24", HomeTeam: "DEN", AwayTeam: "LAL", StartTime: 100},
		{GameID: "g3", Season: "2022-23", HomeTeam: "GSW", AwayTeam: "PHX", StartTime: 50},
	}
	require.NoError(t, store.InsertBulk(ctx, games))

	retrieved, err := store.GetBySeason(ctx, "2023-24")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, "g1", retrieved[0].GameID)
	assert.Equal(t, "g2", retrieved[1].GameID)
}

func TestGameStore_InsertBulkRollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.Game{GameID: "g1", Season: "2023-24", HomeTeam: "BOS", AwayTeam: "MIA"}))

	err := store.InsertBulk(ctx, []*domain.Game{
		{GameID: "g2", Season: "2023-24", HomeTeam: "DEN", AwayTeam: "LAL"},
		{GameID: "g1", Season: "2023-24", HomeTeam: "BOS", AwayTeam: "MIA"},
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "g2")
	assert.ErrorIs(t, err, storage.ErrNotFound, "failed batch must not leave partial rows")
}

func TestGameStore_SetReviewFlag(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGameStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.Game{GameID: "g1", Season: "2023-24", HomeTeam: "BOS", AwayTeam: "MIA"}))

	require.NoError(t, store.SetReviewFlag(ctx, "g1", "mirrored_book"))

	retrieved, err := store.GetByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "mirrored_book", retrieved.ReviewFlag)

	err = store.SetReviewFlag(ctx, "missing", "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
