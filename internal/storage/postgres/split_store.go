package postgres

import (
	"context"
	"fmt"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// SplitStore implements storage.SplitStore using PostgreSQL.
type SplitStore struct {
	pool *Pool
}

// NewSplitStore creates a new SplitStore.
func NewSplitStore(pool *Pool) *SplitStore {
	return &SplitStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SplitStore = (*SplitStore)(nil)

const insertAssignmentQuery = `
	INSERT INTO split_assignments (game_id, season, split) VALUES ($1, $2, $3)
`

// Insert adds a new assignment. Returns ErrDuplicateKey if game_id is already assigned.
func (s *SplitStore) Insert(ctx context.Context, a *domain.SplitAssignment) error {
	if !a.Split.Valid() {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertAssignmentQuery, a.GameID, a.Season, string(a.Split))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert split assignment: %w", err)
	}
	return nil
}

// InsertBulk adds multiple assignments atomically. Fails entire batch on any duplicate.
func (s *SplitStore) InsertBulk(ctx context.Context, assignments []*domain.SplitAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range assignments {
		if !a.Split.Valid() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertAssignmentQuery, a.GameID, a.Season, string(a.Split))
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert split assignment in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByGameID retrieves the assignment for a game. Returns ErrNotFound if not exists.
func (s *SplitStore) GetByGameID(ctx context.Context, gameID string) (*domain.SplitAssignment, error) {
	query := `
		SELECT game_id, season, split
		FROM split_assignments
		WHERE game_id = $1
	`

	var a domain.SplitAssignment
	var splitStr string
	err := s.pool.QueryRow(ctx, query, gameID).Scan(&a.GameID, &a.Season, &splitStr)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get split assignment: %w", err)
	}
	a.Split = domain.Split(splitStr)
	return &a, nil
}

// GetBySeasonSplit retrieves all assignments for a (season, split), ordered by game_id ASC.
func (s *SplitStore) GetBySeasonSplit(ctx context.Context, season string, split domain.Split) ([]*domain.SplitAssignment, error) {
	query := `
		SELECT game_id, season, split
		FROM split_assignments
		WHERE season = $1 AND split = $2
		ORDER BY game_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season, string(split))
	if err != nil {
		return nil, fmt.Errorf("get split assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*domain.SplitAssignment
	for rows.Next() {
		var a domain.SplitAssignment
		var splitStr string
		if err := rows.Scan(&a.GameID, &a.Season, &splitStr); err != nil {
			return nil, fmt.Errorf("scan split assignment row: %w", err)
		}
		a.Split = domain.Split(splitStr)
		assignments = append(assignments, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate split assignment rows: %w", err)
	}

	return assignments, nil
}
