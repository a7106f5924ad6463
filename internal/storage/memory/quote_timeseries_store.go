package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// QuoteTimeseriesStore is an in-memory implementation of storage.QuoteTimeseriesStore.
type QuoteTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarketQuotePoint // keyed by (game_id, timestamp_ms)
}

// NewQuoteTimeseriesStore creates a new in-memory market quote store.
func NewQuoteTimeseriesStore() *QuoteTimeseriesStore {
	return &QuoteTimeseriesStore{
		data: make(map[string]*domain.MarketQuotePoint),
	}
}

// quoteKey generates a unique key for a quote point.
func quoteKey(gameID string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", gameID, timestampMs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
func (s *QuoteTimeseriesStore) InsertBulk(_ context.Context, points []*domain.MarketQuotePoint) error {
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
		key := quoteKey(p.GameID, p.TimestampMs)
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
		s.data[quoteKey(p.GameID, p.TimestampMs)] = &pointCopy
	}
	return nil
}

// GetByGameID retrieves all points for a game, ordered by timestamp ASC.
func (s *QuoteTimeseriesStore) GetByGameID(_ context.Context, gameID string) ([]*domain.MarketQuotePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketQuotePoint
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
func (s *QuoteTimeseriesStore) GetByTimeRange(_ context.Context, gameID string, start, end int64) ([]*domain.MarketQuotePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketQuotePoint
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

var _ storage.QuoteTimeseriesStore = (*QuoteTimeseriesStore)(nil)
