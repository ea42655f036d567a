package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajsir217-oss/profiledata-gateway/internal/domain/model"
	"github.com/rajsir217-oss/profiledata-gateway/internal/services/pii"
)

type PIIRepo struct {
	pool *pgxpool.Pool
}

func NewPIIRepo(pool *pgxpool.Pool) *PIIRepo {
	return &PIIRepo{pool: pool}
}

func (r *PIIRepo) CreateRequest(ctx context.Context, req model.PIIRequest) error {
	if r.pool == nil {
		return nil
	}

	const query = `
INSERT INTO pii_requests (
	id,
	requester_username,
	requested_username,
	access_type,
	message,
	status,
	created_at
) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NOW())
ON CONFLICT (requester_username, requested_username, access_type)
	WHERE status = 'pending'
DO NOTHING
`
	if _, err := r.pool.Exec(
		ctx,
		query,
		req.ID,
		req.Requester,
		req.Requested,
		req.AccessType,
		req.Message,
		model.PIIStatusPending,
	); err != nil {
		return fmt.Errorf("insert pii request: %w", err)
	}
	return nil
}

func (r *PIIRepo) SetRequestStatus(ctx context.Context, id, status string) error {
	if r.pool == nil {
		return nil
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE pii_requests
SET status = $2, responded_at = NOW()
WHERE id = $1
`, id, status)
	if err != nil {
		return fmt.Errorf("set pii request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pii.ErrNotFound
	}
	return nil
}

// ListOutgoing returns the requester's requests regardless of status.
// Approved rows here are informational only; access decisions come from
// the grants table.
func (r *PIIRepo) ListOutgoing(ctx context.Context, requester string) ([]model.PIIRequest, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, requester_username, requested_username, access_type, COALESCE(message, ''), status, created_at, responded_at
FROM pii_requests
WHERE requester_username = $1
ORDER BY created_at DESC
`, requester)
	if err != nil {
		return nil, fmt.Errorf("list outgoing pii requests: %w", err)
	}
	defer rows.Close()

	out := make([]model.PIIRequest, 0)
	for rows.Next() {
		var (
			req         model.PIIRequest
			createdAt   time.Time
			respondedAt *time.Time
		)
		if err := rows.Scan(
			&req.ID,
			&req.Requester,
			&req.Requested,
			&req.AccessType,
			&req.Message,
			&req.Status,
			&createdAt,
			&respondedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pii request row: %w", err)
		}
		req.CreatedAt = createdAt.UTC()
		req.RespondedAt = respondedAt
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pii request rows: %w", err)
	}
	return out, nil
}

func (r *PIIRepo) ListPendingForOwner(ctx context.Context, owner string) ([]model.PIIRequest, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, requester_username, requested_username, access_type, COALESCE(message, ''), status, created_at, responded_at
FROM pii_requests
WHERE requested_username = $1 AND status = 'pending'
ORDER BY created_at ASC
`, owner)
	if err != nil {
		return nil, fmt.Errorf("list pending pii requests: %w", err)
	}
	defer rows.Close()

	out := make([]model.PIIRequest, 0)
	for rows.Next() {
		var (
			req         model.PIIRequest
			createdAt   time.Time
			respondedAt *time.Time
		)
		if err := rows.Scan(
			&req.ID,
			&req.Requester,
			&req.Requested,
			&req.AccessType,
			&req.Message,
			&req.Status,
			&createdAt,
			&respondedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pii request row: %w", err)
		}
		req.CreatedAt = createdAt.UTC()
		req.RespondedAt = respondedAt
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pii request rows: %w", err)
	}
	return out, nil
}

func (r *PIIRepo) UpsertGrant(ctx context.Context, grant model.PIIGrant) error {
	if r.pool == nil {
		return nil
	}

	const query = `
INSERT INTO pii_grants (
	id,
	granter_username,
	granted_to_username,
	access_type,
	is_active,
	created_at
) VALUES ($1, $2, $3, $4, TRUE, NOW())
ON CONFLICT (granter_username, granted_to_username, access_type) DO UPDATE SET
	is_active = TRUE,
	created_at = NOW()
`
	if _, err := r.pool.Exec(
		ctx,
		query,
		grant.ID,
		grant.Granter,
		grant.GrantedTo,
		grant.AccessType,
	); err != nil {
		return fmt.Errorf("upsert pii grant: %w", err)
	}
	return nil
}

func (r *PIIRepo) RevokeGrant(ctx context.Context, granter, grantedTo, accessType string) error {
	if r.pool == nil {
		return nil
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE pii_grants
SET is_active = FALSE
WHERE granter_username = $1 AND granted_to_username = $2 AND access_type = $3
`, granter, grantedTo, accessType); err != nil {
		return fmt.Errorf("revoke pii grant: %w", err)
	}
	return nil
}

// ActiveAccessTypes returns the access types granter has actively granted
// to grantedTo. This is the single authoritative access check.
func (r *PIIRepo) ActiveAccessTypes(ctx context.Context, granter, grantedTo string) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT access_type
FROM pii_grants
WHERE granter_username = $1 AND granted_to_username = $2 AND is_active
`, granter, grantedTo)
	if err != nil {
		return nil, fmt.Errorf("list active access types: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var accessType string
		if err := rows.Scan(&accessType); err != nil {
			return nil, fmt.Errorf("scan access type row: %w", err)
		}
		out = append(out, accessType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access type rows: %w", err)
	}
	return out, nil
}

// ListReceived groups active grants received by a user, one entry per
// granter with the aggregated access types.
func (r *PIIRepo) ListReceived(ctx context.Context, grantedTo string) ([]model.ReceivedAccess, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT granter_username, array_agg(access_type ORDER BY access_type)
FROM pii_grants
WHERE granted_to_username = $1 AND is_active
GROUP BY granter_username
ORDER BY granter_username
`, grantedTo)
	if err != nil {
		return nil, fmt.Errorf("list received pii access: %w", err)
	}
	defer rows.Close()

	out := make([]model.ReceivedAccess, 0)
	for rows.Next() {
		var access model.ReceivedAccess
		if err := rows.Scan(&access.Granter, &access.AccessTypes); err != nil {
			return nil, fmt.Errorf("scan received access row: %w", err)
		}
		out = append(out, access)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate received access rows: %w", err)
	}
	return out, nil
}
