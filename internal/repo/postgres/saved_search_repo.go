package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	savedsvc "github.com/rajsir217-oss/profiledata-gateway/internal/services/savedsearch"
)

type SavedSearchRepo struct {
	pool *pgxpool.Pool
}

func NewSavedSearchRepo(pool *pgxpool.Pool) *SavedSearchRepo {
	return &SavedSearchRepo{pool: pool}
}

func (r *SavedSearchRepo) Create(ctx context.Context, search model.SavedSearch) error {
	if r.pool == nil {
		return nil
	}

	criteria, err := json.Marshal(search.Criteria)
	if err != nil {
		return fmt.Errorf("marshal saved search criteria: %w", err)
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if search.IsDefault {
			if err := clearDefaultFlag(ctx, tx, search.Username); err != nil {
				return err
			}
		}

		const query = `
INSERT INTO saved_searches (
	id,
	username,
	name,
	criteria,
	min_match_score,
	is_default,
	notify_enabled,
	notify_channels,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
		if _, err := tx.Exec(
			ctx,
			query,
			search.ID,
			search.Username,
			search.Name,
			criteria,
			search.MinMatchScore,
			search.IsDefault,
			search.Notifications.Enabled,
			search.Notifications.Channels,
			search.CreatedAt,
			search.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert saved search: %w", err)
		}
		return nil
	})
}

func (r *SavedSearchRepo) Update(ctx context.Context, search model.SavedSearch) error {
	if r.pool == nil {
		return nil
	}

	criteria, err := json.Marshal(search.Criteria)
	if err != nil {
		return fmt.Errorf("marshal saved search criteria: %w", err)
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if search.IsDefault {
			if err := clearDefaultFlag(ctx, tx, search.Username); err != nil {
				return err
			}
		}

		const query = `
UPDATE saved_searches
SET
	name = $3,
	criteria = $4,
	min_match_score = $5,
	is_default = $6,
	notify_enabled = $7,
	notify_channels = $8,
	updated_at = $9
WHERE id = $1 AND username = $2
`
		tag, err := tx.Exec(
			ctx,
			query,
			search.ID,
			search.Username,
			search.Name,
			criteria,
			search.MinMatchScore,
			search.IsDefault,
			search.Notifications.Enabled,
			search.Notifications.Channels,
			search.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update saved search: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return savedsvc.ErrNotFound
		}
		return nil
	})
}

func (r *SavedSearchRepo) Delete(ctx context.Context, username, id string) error {
	if r.pool == nil {
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM saved_searches
WHERE id = $1 AND username = $2
`, id, username)
	if err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return savedsvc.ErrNotFound
	}
	return nil
}

func (r *SavedSearchRepo) ListByUser(ctx context.Context, username string) ([]model.SavedSearch, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, username, name, criteria, min_match_score, is_default, notify_enabled, notify_channels, created_at, updated_at
FROM saved_searches
WHERE username = $1
ORDER BY is_default DESC, updated_at DESC
`, username)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	defer rows.Close()

	return scanSavedSearches(rows)
}

func (r *SavedSearchRepo) GetDefault(ctx context.Context, username string) (model.SavedSearch, error) {
	if r.pool == nil {
		return model.SavedSearch{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT id, username, name, criteria, min_match_score, is_default, notify_enabled, notify_channels, created_at, updated_at
FROM saved_searches
WHERE username = $1 AND is_default
LIMIT 1
`, username)

	search, err := scanSavedSearch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SavedSearch{}, savedsvc.ErrNotFound
		}
		return model.SavedSearch{}, err
	}
	return search, nil
}

// ListNotifiable returns every saved search with notifications enabled,
// across all users. Used by the match notifier job.
func (r *SavedSearchRepo) ListNotifiable(ctx context.Context) ([]model.SavedSearch, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, username, name, criteria, min_match_score, is_default, notify_enabled, notify_channels, created_at, updated_at
FROM saved_searches
WHERE notify_enabled
ORDER BY username, updated_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list notifiable saved searches: %w", err)
	}
	defer rows.Close()

	return scanSavedSearches(rows)
}

func clearDefaultFlag(ctx context.Context, tx pgx.Tx, username string) error {
	if _, err := tx.Exec(ctx, `
UPDATE saved_searches
SET is_default = FALSE, updated_at = NOW()
WHERE username = $1 AND is_default
`, username); err != nil {
		return fmt.Errorf("clear default saved search flag: %w", err)
	}
	return nil
}

type savedSearchRow interface {
	Scan(dest ...any) error
}

func scanSavedSearch(row savedSearchRow) (model.SavedSearch, error) {
	var (
		search    model.SavedSearch
		criteria  []byte
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(
		&search.ID,
		&search.Username,
		&search.Name,
		&criteria,
		&search.MinMatchScore,
		&search.IsDefault,
		&search.Notifications.Enabled,
		&search.Notifications.Channels,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.SavedSearch{}, err
	}

	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &search.Criteria); err != nil {
			return model.SavedSearch{}, fmt.Errorf("unmarshal saved search criteria: %w", err)
		}
	}

	search.CreatedAt = createdAt.UTC()
	search.UpdatedAt = updatedAt.UTC()
	return search, nil
}

func scanSavedSearches(rows pgx.Rows) ([]model.SavedSearch, error) {
	out := make([]model.SavedSearch, 0)
	for rows.Next() {
		search, err := scanSavedSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved search row: %w", err)
		}
		out = append(out, search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved search rows: %w", err)
	}
	return out, nil
}
