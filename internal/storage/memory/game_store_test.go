package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

func TestGameStore_InsertAndGet(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	g := &domain.Game{
		GameID:    "2023-10-24-DEN-LAL",
		Season:    "2023-24",
		HomeTeam:  "DEN",
		AwayTeam:  "LAL",
		StartTime: 1698192000000,
		FinalHome: 119,
		FinalAway: 107,
		HomeWon:   true,
	}

	// Insert
	err := store.Insert(ctx, g)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Get
	got, err := store.GetByID(ctx, "2023-10-24-DEN-LAL")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if got.GameID != g.GameID {
		t.Errorf("GameID mismatch: got %s, want %s", got.GameID, g.GameID)
	}
	if got.HomeTeam != g.HomeTeam {
		t.Errorf("HomeTeam mismatch: got %s, want %s", got.HomeTeam, g.HomeTeam)
	}
	if !got.HomeWon {
		t.Error("HomeWon lost on round trip")
	}
}

func TestGameStore_DuplicateKey(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	g := &domain.Game{GameID: "g1", Season: "2023-24"}

	if err := store.Insert(ctx, g); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, g)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestGameStore_NotFound(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGameStore_GetBySeasonOrdered(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	games := []*domain.Game{
		{GameID: "g3", Season: "2023-24", StartTime: 300},
		{GameID: "g1", Season: "2023-24", StartTime: 100},
		{GameID: "g2", Season: "2023-24", StartTime: 200},
		{GameID: "other", Season: "2022-23", StartTime: 50},
	}
	if err := store.InsertBulk(ctx, games); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySeason(ctx, "2023-24")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d games, want 3", len(got))
	}
	for i, want := range []string{"g1", "g2", "g3"} {
		if got[i].GameID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].GameID, want)
		}
	}
}

func TestGameStore_InsertBulkAtomic(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Game{GameID: "g1", Season: "2023-24"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Batch containing an existing key must fail without inserting anything.
	err := store.InsertBulk(ctx, []*domain.Game{
		{GameID: "g2", Season: "2023-24"},
		{GameID: "g1", Season: "2023-24"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	if _, err := store.GetByID(ctx, "g2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("g2 inserted despite batch failure: %v", err)
	}
}

func TestGameStore_SetReviewFlag(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Game{GameID: "g1", Season: "2023-24"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := store.SetReviewFlag(ctx, "g1", "mirrored_book"); err != nil {
		t.Fatalf("SetReviewFlag failed: %v", err)
	}

	got, err := store.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ReviewFlag != "mirrored_book" {
		t.Errorf("ReviewFlag = %q, want %q", got.ReviewFlag, "mirrored_book")
	}

	if err := store.SetReviewFlag(ctx, "missing", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGameStore_CopyOnRead(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	if err := store.Insert(ctx, &domain.Game{GameID: "g1", Season: "2023-24", HomeTeam: "DEN"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "g1")
	got.HomeTeam = "MUTATED"

	again, _ := store.GetByID(ctx, "g1")
	if again.HomeTeam != "DEN" {
		t.Errorf("store data mutated through returned copy: %s", again.HomeTeam)
	}
}

func TestGameStore_ConcurrentAccess(t *testing.T) {
	store := NewGameStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			g := &domain.Game{
				GameID: string(rune('a'+n)) + "-game",
				Season: "2023-24",
			}
			if err := store.Insert(ctx, g); err != nil {
				t.Errorf("concurrent Insert failed: %v", err)
			}
			if _, err := store.GetBySeason(ctx, "2023-24"); err != nil {
				t.Errorf("concurrent GetBySeason failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetBySeason(ctx, "2023-24")
	if err != nil {
		t.Fatalf("GetBySeason failed: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("got %d games, want 10", len(got))
	}
}
