package clickhouse

import (
	"context"
	"fmt"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// StateTimeseriesStore implements storage.StateTimeseriesStore using ClickHouse.
type StateTimeseriesStore struct {
	conn *Conn
}

// NewStateTimeseriesStore creates a new StateTimeseriesStore.
func NewStateTimeseriesStore(conn *Conn) *StateTimeseriesStore {
	return &StateTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.StateTimeseriesStore = (*StateTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
func (s *StateTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.GameStatePoint) error {
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
		INSERT INTO game_state_timeseries (
			game_id, timestamp_ms, point_diff, seconds_left, home_possesses
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.GameID, uint64(p.TimestampMs),
			int32(p.PointDiff), p.SecondsLeft, boolToUInt8(p.HomePossesses),
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
func (s *StateTimeseriesStore) GetByGameID(ctx context.Context, gameID string) ([]*domain.GameStatePoint, error) {
	query := `
		SELECT game_id, timestamp_ms, point_diff, seconds_left, home_possesses
		FROM game_state_timeseries
		WHERE game_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query by game id: %w", err)
	}
	defer rows.Close()

	return scanStatePoints(rows)
}

// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
func (s *StateTimeseriesStore) GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.GameStatePoint, error) {
	query := `
		SELECT game_id, timestamp_ms, point_diff, seconds_left, home_possesses
		FROM game_state_timeseries
		WHERE game_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanStatePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *StateTimeseriesStore) exists(ctx context.Context, gameID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM game_state_timeseries
		WHERE game_id = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, gameID, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanStatePoints scans multiple rows.
func scanStatePoints(rows chRows) ([]*domain.GameStatePoint, error) {
	var points []*domain.GameStatePoint

	for rows.Next() {
		var p domain.GameStatePoint
		var timestampMs uint64
		var pointDiff int32
		var homePossesses uint8

		err := rows.Scan(
			&p.GameID, &timestampMs,
			&pointDiff, &p.SecondsLeft, &homePossesses,
		)
		if err != nil {
			return nil, fmt.Errorf("scan state point row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		p.PointDiff = int(pointDiff)
		p.HomePossesses = homePossesses != 0
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state point rows: %w", err)
	}

	return points, nil
}
