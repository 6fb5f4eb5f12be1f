package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
	"github.com/classware/classman-backend/internal/validator"
)

// credentialService is the slice of service.AuthService the handler uses.
type credentialService interface {
	CheckPassword(hash, password string) error
	IssueToken(user *model.User) (string, error)
	RefreshToken(ctx context.Context, oldToken string) (string, *model.User, error)
}

// userDirectory is the username lookup, implemented by service.UserService.
type userDirectory interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// grantReader reads effective permission keys, implemented by
// service.PermissionService.
type grantReader interface {
	EffectiveKeys(ctx context.Context, userID int64) ([]model.PermissionKey, error)
}

// authEventSink records auth events, implemented by audit.Recorder.
type authEventSink interface {
	Record(event model.AuthEvent)
}

// AuthHandler handles login, token refresh, and the current-user endpoint.
type AuthHandler struct {
	authService credentialService
	userService userDirectory
	permService grantReader
	recorder    authEventSink
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService credentialService,
	userService userDirectory,
	permService grantReader,
	recorder authEventSink,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		permService: permService,
		recorder:    recorder,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates username + password, returns a JWT and the caller's currently
// effective permission keys. The key list is informational for the UI; the
// token never carries permissions.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		// Only a missing row is a credential failure; a store outage is not
		// the caller's fault and must not look like one.
		if !errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		h.recorder.Record(model.AuthEvent{
			EventType: model.AuthEventLoginFailed,
			Username:  req.Username,
			Detail:    "unknown username",
		})
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		h.recorder.Record(model.AuthEvent{
			EventType: model.AuthEventLoginFailed,
			UserID:    &user.ID,
			Username:  user.Username,
			Detail:    "wrong password",
		})
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if user.Status != model.UserStatusActive {
		h.recorder.Record(model.AuthEvent{
			EventType: model.AuthEventUserDisabled,
			UserID:    &user.ID,
			Username:  user.Username,
			Detail:    "login attempt on disabled account",
		})
		response.Fail(c, http.StatusUnauthorized, response.ErrUserDisabled)
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	keys, err := h.permService.EffectiveKeys(c.Request.Context(), user.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{
		Token:       token,
		User:        *user,
		Permissions: permissionStrings(keys),
	})
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Exchanges a still-valid token for a fresh one. An expired token cannot be
// refreshed, and neither can a token whose account has since been disabled.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.authService.RefreshToken(c.Request.Context(), req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenExpired)
		case errors.Is(err, service.ErrUserDisabled):
			response.Fail(c, http.StatusUnauthorized, response.ErrUserDisabled)
		case errors.Is(err, service.ErrTokenMalformed), errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the authenticated user and their currently effective permission
// keys, read fresh from the store.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if !identity.Authenticated() {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	keys, err := h.permService.EffectiveKeys(c.Request.Context(), identity.User.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        identity.User,
		"permissions": permissionStrings(keys),
	})
}

func permissionStrings(keys []model.PermissionKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
