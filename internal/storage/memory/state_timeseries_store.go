package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// StateTimeseriesStore is an in-memory implementation of storage.StateTimeseriesStore.
type StateTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.GameStatePoint // keyed by (game_id, timestamp_ms)
}

// NewStateTimeseriesStore creates a new in-memory game state store.
func NewStateTimeseriesStore() *StateTimeseriesStore {
	return &StateTimeseriesStore{
		data: make(map[string]*domain.GameStatePoint),
	}
}

// stateKey generates a unique key for a state point.
func stateKey(gameID string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", gameID, timestampMs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
func (s *StateTimeseriesStore) InsertBulk(_ context.Context, points []*domain.GameStatePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.GameID == "" {
			return storage.ErrInvalidInput
		}
		key := stateKey(p.GameID, p.TimestampMs)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[stateKey(p.GameID, p.TimestampMs)] = &pointCopy
	}
	return nil
}

// GetByGameID retrieves all points for a game, ordered by timestamp ASC.
func (s *StateTimeseriesStore) GetByGameID(_ context.Context, gameID string) ([]*domain.GameStatePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GameStatePoint
	for _, p := range s.data {
		if p.GameID == gameID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
func (s *StateTimeseriesStore) GetByTimeRange(_ context.Context, gameID string, start, end int64) ([]*domain.GameStatePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.GameStatePoint
	for _, p := range s.data {
		if p.GameID == gameID && p.TimestampMs >= start && p.TimestampMs <= end {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

var _ storage.StateTimeseriesStore = (*StateTimeseriesStore)(nil)
