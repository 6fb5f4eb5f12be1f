package model

import "time"

// UserPermission links a user to a permission key. Grants are never
// hard-deleted; revocation flips is_active off and the row is retained.
type UserPermission struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	PermissionID int64         `json:"permission_id"`
	Key          PermissionKey `json:"permission_key"`
	Name         string        `json:"permission_name"`
	Category     string        `json:"category"`
	IsActive     bool          `json:"is_active"`
	ExpiresAt    *time.Time    `json:"expires_at"`
	GrantedAt    time.Time     `json:"granted_at"`
	GrantedBy    int64         `json:"granted_by"`
	// Effective is computed at read time for display; it is not stored.
	Effective bool `json:"effective"`
}

// EffectiveAt reports whether the grant confers its permission at instant t:
// active, and either non-expiring or expiring strictly after t.
func (g *UserPermission) EffectiveAt(t time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(t)
}

// GrantRequest is the payload for granting a permission to a user.
type GrantRequest struct {
	PermissionID int64      `json:"permission_id" binding:"required"`
	ExpiresAt    *time.Time `json:"expires_at"`
}
