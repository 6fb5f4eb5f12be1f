package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classware/classman-backend/internal/model"
)

// PermissionRepository is the permission store: the catalog plus the
// user_permissions grant relation. It holds no authorization logic of its
// own; policy enforcement lives in the gate.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// ListCatalog retrieves all permission definitions ordered by category then
// name (display ordering only).
func (r *PermissionRepository) ListCatalog(ctx context.Context) ([]model.Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, permission_key, permission_name, category, description
		 FROM permissions ORDER BY category, permission_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []model.Permission
	for rows.Next() {
		var p model.Permission
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Description); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// EffectiveKeys retrieves the permission keys a user holds right now:
// grants that are active and either non-expiring or not yet expired.
// This is the one hand-written join of the authorization core; it is read
// fresh on every decision, never cached.
func (r *PermissionRepository) EffectiveKeys(ctx context.Context, userID int64) ([]model.PermissionKey, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.permission_key
		 FROM user_permissions up
		 JOIN permissions p ON p.id = up.permission_id
		 WHERE up.user_id = $1
		   AND up.is_active
		   AND (up.expires_at IS NULL OR up.expires_at > now())
		 ORDER BY p.category, p.permission_name`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []model.PermissionKey
	for rows.Next() {
		var k model.PermissionKey
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// HasGrant reports whether the user holds an effective grant for key.
func (r *PermissionRepository) HasGrant(ctx context.Context, userID int64, key model.PermissionKey) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM user_permissions up
		   JOIN permissions p ON p.id = up.permission_id
		   WHERE up.user_id = $1
		     AND p.permission_key = $2
		     AND up.is_active
		     AND (up.expires_at IS NULL OR up.expires_at > now())
		 )`, userID, key,
	).Scan(&exists)
	return exists, err
}

// ListGrants retrieves every grant row for a user, including inactive and
// expired ones, joined with the catalog for display.
func (r *PermissionRepository) ListGrants(ctx context.Context, userID int64) ([]model.UserPermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT up.id, up.user_id, up.permission_id, p.permission_key, p.permission_name, p.category,
		        up.is_active, up.expires_at, up.granted_at, up.granted_by
		 FROM user_permissions up
		 JOIN permissions p ON p.id = up.permission_id
		 WHERE up.user_id = $1
		 ORDER BY p.category, p.permission_name`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.UserPermission
	for rows.Next() {
		var g model.UserPermission
		if err := rows.Scan(&g.ID, &g.UserID, &g.PermissionID, &g.Key, &g.Name, &g.Category,
			&g.IsActive, &g.ExpiresAt, &g.GrantedAt, &g.GrantedBy); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// Grant records a permission grant. A previously revoked or expired grant
// for the same (user, permission) pair is re-activated in place, keeping one
// row per pair.
func (r *PermissionRepository) Grant(ctx context.Context, g *model.UserPermission) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO user_permissions (user_id, permission_id, is_active, expires_at, granted_by)
		 VALUES ($1, $2, TRUE, $3, $4)
		 ON CONFLICT (user_id, permission_id)
		 DO UPDATE SET is_active = TRUE, expires_at = EXCLUDED.expires_at,
		               granted_at = now(), granted_by = EXCLUDED.granted_by
		 RETURNING id, granted_at`,
		g.UserID, g.PermissionID, g.ExpiresAt, g.GrantedBy,
	).Scan(&g.ID, &g.GrantedAt)
}

// Revoke deactivates a grant by ID. Soft revoke: the row is retained.
func (r *PermissionRepository) Revoke(ctx context.Context, grantID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_permissions SET is_active = FALSE WHERE id = $1`, grantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetPermissionByID retrieves one catalog row.
func (r *PermissionRepository) GetPermissionByID(ctx context.Context, id int64) (*model.Permission, error) {
	p := &model.Permission{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, permission_key, permission_name, category, description
		 FROM permissions WHERE id = $1`, id,
	).Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Description)
	if err != nil {
		return nil, err
	}
	return p, nil
}
