package memory

import (
	"context"
	"sort"
	"sync"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// GameStore is an in-memory implementation of storage.GameStore.
type GameStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Game // keyed by game_id
}

// NewGameStore creates a new in-memory game store.
func NewGameStore() *GameStore {
	return &GameStore{
		data: make(map[string]*domain.Game),
	}
}

// Insert adds a new game. Returns ErrDuplicateKey if game_id exists.
func (s *GameStore) Insert(_ context.Context, g *domain.Game) error {
	if g == nil || g.GameID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[g.GameID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	gameCopy := *g
	s.data[g.GameID] = &gameCopy
	return nil
}

// InsertBulk adds multiple games atomically. Fails entire batch on any duplicate.
func (s *GameStore) InsertBulk(_ context.Context, games []*domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(games))
	for _, g := range games {
		if g == nil || g.GameID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[g.GameID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[g.GameID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[g.GameID] = struct{}{}
	}

	for _, g := range games {
		gameCopy := *g
		s.data[g.GameID] = &gameCopy
	}
	return nil
}

// GetByID retrieves a game by its ID. Returns ErrNotFound if not exists.
func (s *GameStore) GetByID(_ context.Context, gameID string) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.data[gameID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	gameCopy := *g
	return &gameCopy, nil
}

// GetBySeason retrieves all games for a season, ordered by start_time ASC.
func (s *GameStore) GetBySeason(_ context.Context, season string) ([]*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Game
	for _, g := range s.data {
		if g.Season == season {
			gameCopy := *g
			result = append(result, &gameCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime != result[j].StartTime {
			return result[i].StartTime < result[j].StartTime
		}
		return result[i].GameID < result[j].GameID
	})

	return result, nil
}

// SetReviewFlag records an alignment review flag for a game.
func (s *GameStore) SetReviewFlag(_ context.Context, gameID, flag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.data[gameID]
	if !exists {
		return storage.ErrNotFound
	}
	g.ReviewFlag = flag
	return nil
}

// Verify interface compliance at compile time.
var _ storage.GameStore = (*GameStore)(nil)
