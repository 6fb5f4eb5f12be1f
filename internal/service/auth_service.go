package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
)

// Common auth errors. The gate maps these to the 401 taxonomy; callers can
// tell "no token" apart because verification is only attempted when a token
// was presented.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed or signature invalid")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user account disabled")
)

// Claims extends JWT standard claims with the identity fields every request
// carries. Permissions are never embedded in the token; the permission store
// is re-read per policy check so grant changes take effect immediately.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int64          `json:"user_id"`
	Username string         `json:"username"`
	UserType model.UserType `json:"user_type"`
}

// UserStore is the user lookup the resolver needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// AuthService is the credential issuer and identity resolver: it mints,
// verifies, and refreshes signed identity tokens and maps verified claims
// to live user records.
type AuthService struct {
	cfg   *config.Config
	users UserStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users UserStore) *AuthService {
	return &AuthService{cfg: cfg, users: users}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken creates a signed token carrying the user's current identity
// attributes, expiring after the configured offset.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    config.TokenIssuer,
			Audience:  jwt.ClaimStrings{config.TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:   user.ID,
		Username: user.Username,
		UserType: user.UserType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims.
// Fails with ErrTokenExpired past the expiry instant and ErrTokenMalformed
// for any structural or signature problem. Verification is pure
// computation: no I/O, no revocation list.
func (s *AuthService) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithIssuer(config.TokenIssuer),
		jwt.WithAudience(config.TokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// ResolveUser maps verified claims to a live user record. Fails with
// ErrUserNotFound for unknown ids and ErrUserDisabled for any status other
// than active. Runs on every authenticated request so a token issued before
// a deactivation stops working at the next request.
func (s *AuthService) ResolveUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// RefreshToken verifies oldToken in full (an expired token cannot be
// refreshed), re-resolves the user, and issues a fresh token with the
// user's current attributes. A deactivated account cannot renew access.
func (s *AuthService) RefreshToken(ctx context.Context, oldToken string) (string, *model.User, error) {
	claims, err := s.VerifyToken(oldToken)
	if err != nil {
		return "", nil, err
	}

	user, err := s.ResolveUser(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
