package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// GameStore implements storage.GameStore using PostgreSQL.
type GameStore struct {
	pool *Pool
}

// NewGameStore creates a new GameStore.
func NewGameStore(pool *Pool) *GameStore {
	return &GameStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GameStore = (*GameStore)(nil)

const insertGameQuery = `
	INSERT INTO games (
		game_id, season, home_team, away_team, start_time, final_home, final_away, home_won, review_flag
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert adds a new game. Returns ErrDuplicateKey if game_id exists.
func (s *GameStore) Insert(ctx context.Context, g *domain.Game) error {
	_, err := s.pool.Exec(ctx, insertGameQuery,
		g.GameID,
		g.Season,
		g.HomeTeam,
		g.AwayTeam,
		g.StartTime,
		g.FinalHome,
		g.FinalAway,
		g.HomeWon,
		g.ReviewFlag,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// InsertBulk adds multiple games atomically. Fails entire batch on any duplicate.
func (s *GameStore) InsertBulk(ctx context.Context, games []*domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, g := range games {
		_, err := tx.Exec(ctx, insertGameQuery,
			g.GameID,
			g.Season,
			g.HomeTeam,
			g.AwayTeam,
			g.StartTime,
			g.FinalHome,
			g.FinalAway,
			g.HomeWon,
			g.ReviewFlag,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert game in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a game by its ID. Returns ErrNotFound if not exists.
func (s *GameStore) GetByID(ctx context.Context, gameID string) (*domain.Game, error) {
	query := `
		SELECT game_id, season, home_team, away_team, start_time, final_home, final_away, home_won, review_flag
		FROM games
		WHERE game_id = $1
	`

	row := s.pool.QueryRow(ctx, query, gameID)
	g, err := scanGame(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get game by id: %w", err)
	}
	return g, nil
}

// GetBySeason retrieves all games for a season, ordered by start_time ASC.
func (s *GameStore) GetBySeason(ctx context.Context, season string) ([]*domain.Game, error) {
	query := `
		SELECT game_id, season, home_team, away_team, start_time, final_home, final_away, home_won, review_flag
		FROM games
		WHERE season = $1
		ORDER BY start_time ASC, game_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("get games by season: %w", err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// SetReviewFlag records an alignment review flag for a game.
func (s *GameStore) SetReviewFlag(ctx context.Context, gameID, flag string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE games SET review_flag = $2 WHERE game_id = $1`, gameID, flag)
	if err != nil {
		return fmt.Errorf("set review flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanGame scans a single row into a Game.
func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	err := row.Scan(
		&g.GameID,
		&g.Season,
		&g.HomeTeam,
		&g.AwayTeam,
		&g.StartTime,
		&g.FinalHome,
		&g.FinalAway,
		&g.HomeWon,
		&g.ReviewFlag,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// scanGames scans multiple rows into a slice of Game.
func scanGames(rows pgx.Rows) ([]*domain.Game, error) {
	var games []*domain.Game

	for rows.Next() {
		var g domain.Game
		err := rows.Scan(
			&g.GameID,
			&g.Season,
			&g.HomeTeam,
			&g.AwayTeam,
			&g.StartTime,
			&g.FinalHome,
			&g.FinalAway,
			&g.HomeWon,
			&g.ReviewFlag,
		)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}

	return games, nil
}
