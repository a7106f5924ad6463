package postgres

import (
	"context"
	"fmt"
	"time"

	"sports-edge-lab/internal/domain"
	"sports-edge-lab/internal/storage"
)

// SearchResultStore implements storage.SearchResultStore using PostgreSQL.
type SearchResultStore struct {
	pool *Pool
}

// NewSearchResultStore creates a new SearchResultStore.
func NewSearchResultStore(pool *Pool) *SearchResultStore {
	return &SearchResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SearchResultStore = (*SearchResultStore)(nil)

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *SearchResultStore) InsertBulk(ctx context.Context, records []*domain.SearchResultRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO search_results (
			run_id, season, entry_threshold, exit_threshold, split,
			game_count, net_profit_dollars, profit_per_game, trade_count, win_rate, profit_factor,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now().UnixMilli()
	for _, r := range records {
		if !r.Split.Valid() {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			r.RunID,
			r.Season,
			r.EntryThreshold,
			r.ExitThreshold,
			string(r.Split),
			r.GameCount,
			r.NetProfitDollars,
			r.ProfitPerGame,
			r.TradeCount,
			r.WinRate,
			r.ProfitFactor,
			now,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert search result in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all records for a run, ordered by
// (exit_threshold, entry_threshold, split) ASC.
func (s *SearchResultStore) GetByRunID(ctx context.Context, runID string) ([]*domain.SearchResultRecord, error) {
	query := `
		SELECT run_id, season, entry_threshold, exit_threshold, split,
		       game_count, net_profit_dollars, profit_per_game, trade_count, win_rate, profit_factor,
		       created_at
		FROM search_results
		WHERE run_id = $1
		ORDER BY exit_threshold ASC, entry_threshold ASC,
		         CASE split WHEN 'train' THEN 0 WHEN 'valid' THEN 1 ELSE 2 END ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get search results by run id: %w", err)
	}
	defer rows.Close()

	var records []*domain.SearchResultRecord
	for rows.Next() {
		var r domain.SearchResultRecord
		var splitStr string
		err := rows.Scan(
			&r.RunID,
			&r.Season,
			&r.EntryThreshold,
			&r.ExitThreshold,
			&splitStr,
			&r.GameCount,
			&r.NetProfitDollars,
			&r.ProfitPerGame,
			&r.TradeCount,
			&r.WinRate,
			&r.ProfitFactor,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan search result row: %w", err)
		}
		r.Split = domain.Split(splitStr)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search result rows: %w", err)
	}

	return records, nil
}

// ListRunIDs retrieves distinct run IDs for a season, most recent first.
func (s *SearchResultStore) ListRunIDs(ctx context.Context, season string) ([]string, error) {
	query := `
		SELECT run_id, max(created_at) AS latest
		FROM search_results
		WHERE season = $1
		GROUP BY run_id
		ORDER BY latest DESC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("list run ids: %w", err)
	}
	defer rows.Close()

	var runIDs []string
	for rows.Next() {
		var id string
		var latest int64
		if err := rows.Scan(&id, &latest); err != nil {
			return nil, fmt.Errorf("scan run id row: %w", err)
		}
		runIDs = append(runIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run id rows: %w", err)
	}

	return runIDs, nil
}
