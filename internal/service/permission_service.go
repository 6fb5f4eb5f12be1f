package service

import (
	"context"
	"fmt"
	"time"

	"github.com/classware/classman-backend/internal/audit"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/repository"
)

// PermissionService handles the permission catalog and grant mutations.
// Grant changes are audited best-effort; the mutation itself never waits on
// the audit sink.
type PermissionService struct {
	permRepo *repository.PermissionRepository
	recorder *audit.Recorder
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(permRepo *repository.PermissionRepository, recorder *audit.Recorder) *PermissionService {
	return &PermissionService{permRepo: permRepo, recorder: recorder}
}

// Catalog retrieves all permission definitions.
func (s *PermissionService) Catalog(ctx context.Context) ([]model.Permission, error) {
	return s.permRepo.ListCatalog(ctx)
}

// UserGrants retrieves every grant row for a user, annotated with whether
// each grant is effective right now.
func (s *PermissionService) UserGrants(ctx context.Context, userID int64) ([]model.UserPermission, error) {
	grants, err := s.permRepo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range grants {
		grants[i].Effective = grants[i].EffectiveAt(now)
	}
	return grants, nil
}

// EffectiveKeys retrieves the keys a user holds effectively right now.
func (s *PermissionService) EffectiveKeys(ctx context.Context, userID int64) ([]model.PermissionKey, error) {
	return s.permRepo.EffectiveKeys(ctx, userID)
}

// Grant gives a user a permission, optionally time-bounded.
func (s *PermissionService) Grant(ctx context.Context, userID, permissionID int64, expiresAt *time.Time, grantedBy int64) (*model.UserPermission, error) {
	perm, err := s.permRepo.GetPermissionByID(ctx, permissionID)
	if err != nil {
		return nil, err
	}

	g := &model.UserPermission{
		UserID:       userID,
		PermissionID: permissionID,
		Key:          perm.Key,
		Name:         perm.Name,
		Category:     perm.Category,
		IsActive:     true,
		ExpiresAt:    expiresAt,
		GrantedBy:    grantedBy,
	}
	if err := s.permRepo.Grant(ctx, g); err != nil {
		return nil, err
	}
	g.Effective = g.EffectiveAt(time.Now())

	s.recorder.Record(model.AuthEvent{
		EventType: model.AuthEventPermissionGranted,
		UserID:    &userID,
		Detail:    fmt.Sprintf("permission %s granted by user %d", perm.Key, grantedBy),
	})
	return g, nil
}

// Revoke deactivates a grant. Soft revoke: the row is retained, and the
// change is visible to the very next permission check.
func (s *PermissionService) Revoke(ctx context.Context, grantID, revokedBy int64) error {
	if err := s.permRepo.Revoke(ctx, grantID); err != nil {
		return err
	}

	s.recorder.Record(model.AuthEvent{
		EventType: model.AuthEventPermissionRevoked,
		Detail:    fmt.Sprintf("grant %d revoked by user %d", grantID, revokedBy),
	})
	return nil
}
