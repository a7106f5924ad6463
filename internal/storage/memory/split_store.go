package memory

import (
	"context"
	"sort"
	"sync"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// SplitStore is an in-memory implementation of storage.SplitStore.
type SplitStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SplitAssignment // keyed by game_id
}

// NewSplitStore creates a new in-memory split assignment store.
func NewSplitStore() *SplitStore {
	return &SplitStore{
		data: make(map[string]*domain.SplitAssignment),
	}
}

// Insert adds a new assignment. Returns ErrDuplicateKey if game_id is already assigned.
func (s *SplitStore) Insert(_ context.Context, a *domain.SplitAssignment) error {
	if a == nil || a.GameID == "" || !a.Split.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.GameID]; exists {
		return storage.ErrDuplicateKey
	}

	assignmentCopy := *a
	s.data[a.GameID] = &assignmentCopy
	return nil
}

// InsertBulk adds multiple assignments atomically. Fails entire batch on any duplicate.
func (s *SplitStore) InsertBulk(_ context.Context, assignments []*domain.SplitAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		if a == nil || a.GameID == "" || !a.Split.Valid() {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[a.GameID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[a.GameID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[a.GameID] = struct{}{}
	}

	for _, a := range assignments {
		assignmentCopy := *a
		s.data[a.GameID] = &assignmentCopy
	}
	return nil
}

// GetByGameID retrieves the assignment for a game. Returns ErrNotFound if not exists.
func (s *SplitStore) GetByGameID(_ context.Context, gameID string) (*domain.SplitAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[gameID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	assignmentCopy := *a
	return &assignmentCopy, nil
}

// GetBySeasonSplit retrieves all assignments for a (season, split), ordered by game_id ASC.
func (s *SplitStore) GetBySeasonSplit(_ context.Context, season string, split domain.Split) ([]*domain.SplitAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SplitAssignment
	for _, a := range s.data {
		if a.Season == season && a.Split == split {
			assignmentCopy := *a
			result = append(result, &assignmentCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].GameID < result[j].GameID
	})

	return result, nil
}

var _ storage.SplitStore = (*SplitStore)(nil)
