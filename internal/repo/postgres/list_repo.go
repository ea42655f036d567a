package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/lists"
)

// ListRepo stores the per-user relationship lists: favorites, shortlist
// and exclusions. All three share one table keyed by list kind.
type ListRepo struct {
	pool *pgxpool.Pool
}

func NewListRepo(pool *pgxpool.Pool) *ListRepo {
	return &ListRepo{pool: pool}
}

func (r *ListRepo) Add(ctx context.Context, kind string, entry model.ListEntry) error {
	if r.pool == nil {
		return nil
	}

	const query = `
INSERT INTO user_lists (
	list_kind,
	owner_username,
	target_username,
	notes,
	reason,
	created_at
) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NOW())
ON CONFLICT (list_kind, owner_username, target_username) DO UPDATE SET
	notes = EXCLUDED.notes,
	reason = EXCLUDED.reason
`
	if _, err := r.pool.Exec(
		ctx,
		query,
		kind,
		entry.Owner,
		entry.Target,
		entry.Notes,
		entry.Reason,
	); err != nil {
		return fmt.Errorf("add %s entry: %w", kind, err)
	}
	return nil
}

func (r *ListRepo) Remove(ctx context.Context, kind, owner, target string) error {
	if r.pool == nil {
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM user_lists
WHERE list_kind = $1 AND owner_username = $2 AND target_username = $3
`, kind, owner, target)
	if err != nil {
		return fmt.Errorf("remove %s entry: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return lists.ErrNotFound
	}
	return nil
}

func (r *ListRepo) List(ctx context.Context, kind, owner string) ([]model.ListEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT owner_username, target_username, COALESCE(notes, ''), COALESCE(reason, ''), created_at
FROM user_lists
WHERE list_kind = $1 AND owner_username = $2
ORDER BY created_at DESC
`, kind, owner)
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", kind, err)
	}
	defer rows.Close()

	out := make([]model.ListEntry, 0)
	for rows.Next() {
		var (
			entry     model.ListEntry
			createdAt time.Time
		)
		if err := rows.Scan(&entry.Owner, &entry.Target, &entry.Notes, &entry.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s entry row: %w", kind, err)
		}
		entry.CreatedAt = createdAt.UTC()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s entry rows: %w", kind, err)
	}
	return out, nil
}

// Targets returns just the target usernames of a list. The search
// service uses this to filter excluded profiles out of merged pages.
func (r *ListRepo) Targets(ctx context.Context, kind, owner string) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT target_username
FROM user_lists
WHERE list_kind = $1 AND owner_username = $2
`, kind, owner)
	if err != nil {
		return nil, fmt.Errorf("list %s targets: %w", kind, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("scan %s target row: %w", kind, err)
		}
		out = append(out, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s target rows: %w", kind, err)
	}
	return out, nil
}
