package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/classware/classman-backend/internal/config"
	"github.com/classware/classman-backend/internal/model"
)

type stubUserStore struct {
	users map[int64]*model.User
}

func (s *stubUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
}

func activeUser() *model.User {
	return &model.User{
		ID:       42,
		Username: "j.doe",
		UserType: model.UserTypeTeacher,
		Status:   model.UserStatusActive,
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewAuthService(testConfig(), &stubUserStore{})
	user := activeUser()

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("UserID = %d, want %d", claims.UserID, user.ID)
	}
	if claims.Username != user.Username {
		t.Fatalf("Username = %q, want %q", claims.Username, user.Username)
	}
	if claims.UserType != model.UserTypeTeacher {
		t.Fatalf("UserType = %q, want teacher", claims.UserType)
	}
	if claims.Issuer != config.TokenIssuer {
		t.Fatalf("Issuer = %q", claims.Issuer)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiry = -time.Minute
	svc := NewAuthService(cfg, &stubUserStore{})

	token, err := svc.IssueToken(activeUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyTokenTampered(t *testing.T) {
	svc := NewAuthService(testConfig(), &stubUserStore{})

	token, err := svc.IssueToken(activeUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	tampered := token[:len(token)-4] + "XXXX"
	if _, err := svc.VerifyToken(tampered); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}

	if _, err := svc.VerifyToken("not-even-a-jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for garbage, got %v", err)
	}
}

func TestVerifyTokenWrongKey(t *testing.T) {
	issuer := NewAuthService(testConfig(), &stubUserStore{})
	token, err := issuer.IssueToken(activeUser())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	otherCfg := testConfig()
	otherCfg.JWTSecret = "another-secret"
	verifier := NewAuthService(otherCfg, &stubUserStore{})

	if _, err := verifier.VerifyToken(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for wrong key, got %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	user := activeUser()
	disabled := &model.User{ID: 9, Username: "gone", UserType: model.UserTypeStudent, Status: model.UserStatusDisabled}
	svc := NewAuthService(testConfig(), &stubUserStore{users: map[int64]*model.User{
		user.ID:     user,
		disabled.ID: disabled,
	}})

	got, err := svc.ResolveUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ResolveUser: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved wrong user: %d", got.ID)
	}

	if _, err := svc.ResolveUser(context.Background(), disabled.ID); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}

	if _, err := svc.ResolveUser(context.Background(), 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	user := activeUser()
	store := &stubUserStore{users: map[int64]*model.User{user.ID: user}}
	svc := NewAuthService(testConfig(), store)

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	fresh, refreshedUser, err := svc.RefreshToken(context.Background(), token)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if fresh == "" {
		t.Fatal("expected a fresh token")
	}
	if refreshedUser.ID != user.ID {
		t.Fatalf("refreshed wrong user: %d", refreshedUser.ID)
	}
}

func TestRefreshTokenExpiredFails(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiry = -time.Minute
	user := activeUser()
	svc := NewAuthService(cfg, &stubUserStore{users: map[int64]*model.User{user.ID: user}})

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, _, err := svc.RefreshToken(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshTokenDisabledUserFails(t *testing.T) {
	user := activeUser()
	store := &stubUserStore{users: map[int64]*model.User{user.ID: user}}
	svc := NewAuthService(testConfig(), store)

	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	// Disable the account after the token was issued.
	user.Status = model.UserStatusDisabled

	if _, _, err := svc.RefreshToken(context.Background(), token); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := NewAuthService(testConfig(), &stubUserStore{})

	hash, err := svc.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "s3cret-pass"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
