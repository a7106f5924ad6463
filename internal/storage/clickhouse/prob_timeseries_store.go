package clickhouse

import (
	"context"
	"fmt"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// ProbTimeseriesStore implements storage.ProbTimeseriesStore using ClickHouse.
type ProbTimeseriesStore struct {
	conn *Conn
}

// NewProbTimeseriesStore creates a new ProbTimeseriesStore.
func NewProbTimeseriesStore(conn *Conn) *ProbTimeseriesStore {
	return &ProbTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ProbTimeseriesStore = (*ProbTimeseriesStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, sequence).
// MergeTree does not enforce uniqueness, so duplicates are checked explicitly
// before the batch is sent.
func (s *ProbTimeseriesStore) InsertBulk(ctx context.Context, points []*domain.ModelProbPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		gameID   string
		sequence int
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		k := key{p.GameID, p.Sequence}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.GameID, p.Sequence)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO model_prob_timeseries (
			game_id, timestamp_ms, sequence, prob_home, point_diff, seconds_left, home_possesses
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.GameID, uint64(p.TimestampMs), uint32(p.Sequence),
			p.ProbHome, int32(p.PointDiff), p.SecondsLeft, boolToUInt8(p.HomePossesses),
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

// GetByGameID retrieves all points for a game, ordered by sequence ASC.
func (s *ProbTimeseriesStore) GetByGameID(ctx context.Context, gameID string) ([]*domain.ModelProbPoint, error) {
	query := `
		SELECT game_id, timestamp_ms, sequence, prob_home, point_diff, seconds_left, home_possesses
		FROM model_prob_timeseries
		WHERE game_id = ?
		ORDER BY sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("query by game id: %w", err)
	}
	defer rows.Close()

	return scanProbPoints(rows)
}

// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
func (s *ProbTimeseriesStore) GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.ModelProbPoint, error) {
	query := `
		SELECT game_id, timestamp_ms, sequence, prob_home, point_diff, seconds_left, home_possesses
		FROM model_prob_timeseries
		WHERE game_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, gameID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanProbPoints(rows)
}

// exists checks if a point with the given key exists.
func (s *ProbTimeseriesStore) exists(ctx context.Context, gameID string, sequence int) (bool, error) {
	query := `
		SELECT count(*) FROM model_prob_timeseries
		WHERE game_id = ? AND sequence = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, gameID, uint32(sequence)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanProbPoints scans multiple rows.
func scanProbPoints(rows chRows) ([]*domain.ModelProbPoint, error) {
	var points []*domain.ModelProbPoint

	for rows.Next() {
		var p domain.ModelProbPoint
		var timestampMs uint64
		var sequence uint32
		var pointDiff int32
		var homePossesses uint8

		err := rows.Scan(
			&p.GameID, &timestampMs, &sequence,
			&p.ProbHome, &pointDiff, &p.SecondsLeft, &homePossesses,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prob point row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		p.Sequence = int(sequence)
		p.PointDiff = int(pointDiff)
		p.HomePossesses = homePossesses != 0
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prob point rows: %w", err)
	}

	return points, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
