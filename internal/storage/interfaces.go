package storage

import (
	"context"

	"sports-edge-lab/internal/domain"
)

// GameStore provides access to games storage.
type GameStore interface {
	// Insert adds a new game. Returns ErrDuplicateKey if game_id exists.
	Insert(ctx context.Context, g *domain.Game) error

	// InsertBulk adds multiple games atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, games []*domain.Game) error

	// GetByID retrieves a game by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, gameID string) (*domain.Game, error)

	// GetBySeason retrieves all games for a season, ordered by start_time ASC.
	GetBySeason(ctx context.Context, season string) ([]*domain.Game, error)

	// SetReviewFlag records an alignment review flag for a game.
	SetReviewFlag(ctx context.Context, gameID, flag string) error
}

// SplitStore provides access to split_assignments storage.
type SplitStore interface {
	// Insert adds a new assignment. Returns ErrDuplicateKey if game_id is already assigned.
	Insert(ctx context.Context, a *domain.SplitAssignment) error

	// InsertBulk adds multiple assignments atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, assignments []*domain.SplitAssignment) error

	// GetByGameID retrieves the assignment for a game. Returns ErrNotFound if not exists.
	GetByGameID(ctx context.Context, gameID string) (*domain.SplitAssignment, error)

	// GetBySeasonSplit retrieves all assignments for a (season, split), ordered by game_id ASC.
	GetBySeasonSplit(ctx context.Context, season string, split domain.Split) ([]*domain.SplitAssignment, error)
}

// ProbTimeseriesStore provides access to model_prob_timeseries storage.
type ProbTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, sequence).
	InsertBulk(ctx context.Context, points []*domain.ModelProbPoint) error

	// GetByGameID retrieves all points for a game, ordered by sequence ASC.
	GetByGameID(ctx context.Context, gameID string) ([]*domain.ModelProbPoint, error)

	// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.ModelProbPoint, error)
}

// QuoteTimeseriesStore provides access to market_quote_timeseries storage.
type QuoteTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.MarketQuotePoint) error

	// GetByGameID retrieves all points for a game, ordered by timestamp ASC.
	GetByGameID(ctx context.Context, gameID string) ([]*domain.MarketQuotePoint, error)

	// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.MarketQuotePoint, error)
}

// StateTimeseriesStore provides access to game_state_timeseries storage.
type StateTimeseriesStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (game_id, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.GameStatePoint) error

	// GetByGameID retrieves all points for a game, ordered by timestamp ASC.
	GetByGameID(ctx context.Context, gameID string) ([]*domain.GameStatePoint, error)

	// GetByTimeRange retrieves points for a game within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, gameID string, start, end int64) ([]*domain.GameStatePoint, error)
}

// SearchResultStore provides access to search_results storage.
type SearchResultStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on
	// duplicate (run_id, entry_threshold, exit_threshold, split).
	InsertBulk(ctx context.Context, records []*domain.SearchResultRecord) error

	// GetByRunID retrieves all records for a run, ordered by
	// (exit_threshold, entry_threshold, split) ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.SearchResultRecord, error)

	// ListRunIDs retrieves distinct run IDs for a season, most recent first.
	ListRunIDs(ctx context.Context, season string) ([]string, error)
}
