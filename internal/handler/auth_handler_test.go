package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
)

type stubDirectory struct {
	users map[string]*model.User
	err   error
}

func (s *stubDirectory) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

// stubCredentials accepts password p for a hash of the form "hash:"+p.
type stubCredentials struct{}

func (stubCredentials) CheckPassword(hash, password string) error {
	if hash != "hash:"+password {
		return service.ErrInvalidCredentials
	}
	return nil
}

func (stubCredentials) IssueToken(user *model.User) (string, error) {
	return "token-" + user.Username, nil
}

func (stubCredentials) RefreshToken(ctx context.Context, oldToken string) (string, *model.User, error) {
	return "", nil, service.ErrTokenMalformed
}

type stubGrantReader struct {
	keys []model.PermissionKey
}

func (s *stubGrantReader) EffectiveKeys(ctx context.Context, userID int64) ([]model.PermissionKey, error) {
	return s.keys, nil
}

type recordedEvents struct {
	events []model.AuthEvent
}

func (r *recordedEvents) Record(event model.AuthEvent) {
	r.events = append(r.events, event)
}

type loginEnvelope struct {
	Data struct {
		Token       string   `json:"token"`
		Permissions []string `json:"permissions"`
	} `json:"data"`
	Error *struct {
		Code response.ErrCode `json:"code"`
	} `json:"error"`
}

func newLoginRouter(dir *stubDirectory, sink *recordedEvents) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(stubCredentials{}, dir, &stubGrantReader{keys: model.AllPermissionKeys[:2]}, sink)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	return r
}

func doLogin(t *testing.T, r *gin.Engine, username, password string) (*httptest.ResponseRecorder, loginEnvelope) {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env loginEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, env
}

func activeUser() *model.User {
	return &model.User{
		ID:           7,
		Username:     "t.rahma",
		PasswordHash: "hash:teacher-pass",
		UserType:     model.UserTypeTeacher,
		Status:       model.UserStatusActive,
	}
}

func TestLoginSuccess(t *testing.T) {
	sink := &recordedEvents{}
	r := newLoginRouter(&stubDirectory{users: map[string]*model.User{"t.rahma": activeUser()}}, sink)

	rec, env := doLogin(t, r, "t.rahma", "teacher-pass")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if env.Data.Token != "token-t.rahma" {
		t.Fatalf("token = %q", env.Data.Token)
	}
	if len(env.Data.Permissions) != 2 {
		t.Fatalf("permissions = %v, want 2 keys", env.Data.Permissions)
	}
	if len(sink.events) != 0 {
		t.Fatalf("unexpected events: %+v", sink.events)
	}
}

func TestLoginUnknownUsername(t *testing.T) {
	sink := &recordedEvents{}
	r := newLoginRouter(&stubDirectory{users: map[string]*model.User{}}, sink)

	rec, env := doLogin(t, r, "nobody", "whatever-pass")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrInvalidCredentials {
		t.Fatalf("error = %+v, want %s", env.Error, response.ErrInvalidCredentials)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != model.AuthEventLoginFailed {
		t.Fatalf("events = %+v, want one login_failed", sink.events)
	}
}

// An unreachable user store is a server fault, not a credential failure: the
// caller gets 500, never 401.
func TestLoginStoreFailureIsInternal(t *testing.T) {
	sink := &recordedEvents{}
	r := newLoginRouter(&stubDirectory{err: errors.New("dial tcp 10.0.0.4:5432: connection refused")}, sink)

	rec, env := doLogin(t, r, "t.rahma", "teacher-pass")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrInternal {
		t.Fatalf("error = %+v, want %s", env.Error, response.ErrInternal)
	}
	if len(sink.events) != 0 {
		t.Fatalf("store failures must not be logged as credential events, got %+v", sink.events)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	sink := &recordedEvents{}
	r := newLoginRouter(&stubDirectory{users: map[string]*model.User{"t.rahma": activeUser()}}, sink)

	rec, env := doLogin(t, r, "t.rahma", "not-the-pass")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrInvalidCredentials {
		t.Fatalf("error = %+v, want %s", env.Error, response.ErrInvalidCredentials)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != model.AuthEventLoginFailed {
		t.Fatalf("events = %+v, want one login_failed", sink.events)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	user := activeUser()
	user.Status = model.UserStatusDisabled
	sink := &recordedEvents{}
	r := newLoginRouter(&stubDirectory{users: map[string]*model.User{"t.rahma": user}}, sink)

	rec, env := doLogin(t, r, "t.rahma", "teacher-pass")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != response.ErrUserDisabled {
		t.Fatalf("error = %+v, want %s", env.Error, response.ErrUserDisabled)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != model.AuthEventUserDisabled {
		t.Fatalf("events = %+v, want one user_disabled", sink.events)
	}
}
