package clickhouse

import (
	"context"
	"fmt"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// QuoteTimeseriesStore implements storage.QuoteTimeseriesStore using ClickHouse.
type QuoteTimeseriesStore struct {
	conn *Conn
}

// NewQuoteTimeseriesStore creates a new QuoteTimeseriesStore.
func NewQuoteTimeseriesStore(conn *Conn) *QuoteTimeseriesStore {
	return &QuoteTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteTimeseriesStore = (*QuoteTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
func (s *QuoteTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.MarketQuotePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		gameID      string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		k := key{p.GameID, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.GameID, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_quote_timeseries (
			game_id, timestamp_ms, bid, ask, away_bid, away_ask
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.GameID, uint64(p.TimestampMs),
			p.Bid, p.Ask, p.AwayBid, p.AwayAsk,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByGameID retrieves all points for a game, ordered by timestamp ASC.
func (s *QuoteTimeseriesStore) GetByGameID(ctx context.Context, gameID string) ([]*domain.MarketQuotePoint, error) {
	query := `
		SELECT game_id, timestamp_ms, bid, ask, away_bid, away_ask
		FROM market_quote_timeseries
		WHERE game_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query by game id: %w", err)
	}
	defer rows.Close()

	return scanQuotePoints(rows)
}

// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
func (s *QuoteTimeseriesStore) GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.MarketQuotePoint, error) {
	query := `
		SELECT game_id, timestamp_ms, bid, ask, away_bid, away_ask
		FROM market_quote_timeseries
		WHERE game_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanQuotePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *QuoteTimeseriesStore) exists(ctx context.Context, gameID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM market_quote_timeseries
		WHERE game_id = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, gameID, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanQuotePoints scans multiple rows.
func scanQuotePoints(rows chRows) ([]*domain.MarketQuotePoint, error) {
	var points []*domain.MarketQuotePoint

	for rows.Next() {
		var p domain.MarketQuotePoint
		var timestampMs uint64

		err := rows.Scan(
			&p.GameID, &timestampMs,
			&p.Bid, &p.Ask, &p.AwayBid, &p.AwayAsk,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quote point row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote point rows: %w", err)
	}

	return points, nil
}
