package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// ProbTimeseriesStore is an in-memory implementation of storage.ProbTimeseriesStore.
type ProbTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ModelProbPoint // keyed by (game_id, sequence)
}

// NewProbTimeseriesStore creates a new in-memory model probability store.
func NewProbTimeseriesStore() *ProbTimeseriesStore {
	return &ProbTimeseriesStore{
		data: make(map[string]*domain.ModelProbPoint),
	}
}

// probKey generates a unique key for a probability point.
func probKey(gameID string, sequence int) string {
	return fmt.Sprintf("%s|%d", gameID, sequence)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, sequence).
func (s *ProbTimeseriesStore) InsertBulk(_ context.Context, points []*domain.ModelProbPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.GameID == "" {
			return storage.ErrInvalidInput
		}
		key := probKey(p.GameID, p.Sequence)
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
		s.data[probKey(p.GameID, p.Sequence)] = &pointCopy
	}
	return nil
}

// GetByGameID retrieves all points for a game, ordered by sequence ASC.
func (s *ProbTimeseriesStore) GetByGameID(_ context.Context, gameID string) ([]*domain.ModelProbPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ModelProbPoint
	for _, p := range s.data {
		if p.GameID == gameID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})

	return result, nil
}

// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
func (s *ProbTimeseriesStore) GetByTimeRange(_ context.Context, gameID string, start, end int64) ([]*domain.ModelProbPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ModelProbPoint
	for _, p := range s.data {
		if p.GameID == gameID && p.TimestampMs >= start && p.TimestampMs <= end {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence < result[j].Sequence
	})

	return result, nil
}

var _ storage.ProbTimeseriesStore = (*ProbTimeseriesStore)(nil)
