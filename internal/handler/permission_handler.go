package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
	"github.com/classware/classman-backend/internal/validator"
)

// PermissionHandler handles the permission catalog and grant administration.
// Admin-only: the routes sit behind a user-type policy, not a permission key,
// so a lockout cannot orphan grant management itself.
type PermissionHandler struct {
	permService *service.PermissionService
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(permService *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permService: permService}
}

// ListCatalog godoc
// GET /api/v1/admin/permissions
// Lists the closed permission catalog.
func (h *PermissionHandler) ListCatalog(c *gin.Context) {
	catalog, err := h.permService.Catalog(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"permissions": catalog})
}

// ListUserGrants godoc
// GET /api/v1/admin/users/:id/permissions
// Lists every grant row of one user, including revoked and expired ones,
// each annotated with whether it is effective right now.
func (h *PermissionHandler) ListUserGrants(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	grants, err := h.permService.UserGrants(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"grants": grants})
}

// GrantPermission godoc
// POST /api/v1/admin/users/:id/permissions
// Grants a permission to a user, optionally time-bounded. Re-granting an
// existing pair re-activates it and replaces the expiry.
func (h *PermissionHandler) GrantPermission(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.GrantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	identity := middleware.GetIdentity(c)
	if !identity.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	grant, err := h.permService.Grant(c.Request.Context(), userID, req.PermissionID, req.ExpiresAt, identity.User.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown permission id
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// Unknown user id
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"grant": grant})
}

// RevokePermission godoc
// DELETE /api/v1/admin/grants/:id
// Revokes a grant. The row is retained; only is_active flips, and the change
// is visible to the very next permission check.
func (h *PermissionHandler) RevokePermission(c *gin.Context) {
	grantID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	identity := middleware.GetIdentity(c)
	if !identity.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.permService.Revoke(c.Request.Context(), grantID, identity.User.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": grantID, "revoked": true})
}
