package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/authz"
	"github.com/classware/classman-backend/internal/middleware"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
)

type stubVerifier struct {
	claims map[string]*service.Claims
}

func (s *stubVerifier) VerifyToken(token string) (*service.Claims, error) {
	if c, ok := s.claims[token]; ok {
		return c, nil
	}
	return nil, service.ErrTokenMalformed
}

type stubResolver struct {
	users    map[int64]*model.User
	disabled map[int64]bool
}

func (s *stubResolver) ResolveUser(_ context.Context, id int64) (*model.User, error) {
	if s.disabled[id] {
		return nil, service.ErrUserDisabled
	}
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

type stubEvaluator struct {
	decision authz.Decision
	err      error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ *model.User, policy authz.Policy) (authz.Decision, error) {
	d := s.decision
	d.Policy = policy
	return d, s.err
}

type stubSink struct {
	mu     sync.Mutex
	events []model.AuthEvent
}

func (s *stubSink) Record(event model.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *stubSink) types() []model.AuthEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuthEventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventType
	}
	return out
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func newTestGate(eval middleware.PolicyEvaluator, sink middleware.EventSink) *middleware.Gate {
	teacher := &model.User{ID: 7, Username: "t.rahma", UserType: model.UserTypeTeacher, Status: model.UserStatusActive}
	verifier := &stubVerifier{claims: map[string]*service.Claims{
		"good-token":     {UserID: 7, Username: "t.rahma", UserType: model.UserTypeTeacher},
		"disabled-token": {UserID: 9, Username: "gone", UserType: model.UserTypeStudent},
	}}
	resolver := &stubResolver{
		users:    map[int64]*model.User{7: teacher},
		disabled: map[int64]bool{9: true},
	}
	return middleware.NewGate(verifier, resolver, eval, sink, zerolog.Nop())
}

func serve(t *testing.T, handler gin.HandlerFunc, header string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/probe", handler, func(c *gin.Context) {
		identity := middleware.GetIdentity(c)
		response.Success(c, http.StatusOK, gin.H{"state": string(identity.State)})
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return rec, body
}

func TestRequireNoToken(t *testing.T) {
	sink := &stubSink{}
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{Allowed: true}}, sink)

	rec, body := serve(t, gate.Require(authz.Authenticated()), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "TOKEN_REQUIRED" {
		t.Fatalf("error = %+v, want TOKEN_REQUIRED", body.Error)
	}
}

func TestRequireBadToken(t *testing.T) {
	sink := &stubSink{}
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{Allowed: true}}, sink)

	rec, body := serve(t, gate.Require(authz.Authenticated()), "Bearer garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "TOKEN_INVALID" {
		t.Fatalf("error = %+v, want TOKEN_INVALID", body.Error)
	}

	types := sink.types()
	if len(types) != 1 || types[0] != model.AuthEventTokenRejected {
		t.Fatalf("audit events = %v, want [token_rejected]", types)
	}
}

func TestRequireDisabledUser(t *testing.T) {
	sink := &stubSink{}
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{Allowed: true}}, sink)

	rec, body := serve(t, gate.Require(authz.Authenticated()), "Bearer disabled-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "USER_DISABLED" {
		t.Fatalf("error = %+v, want USER_DISABLED", body.Error)
	}

	types := sink.types()
	if len(types) != 1 || types[0] != model.AuthEventUserDisabled {
		t.Fatalf("audit events = %v, want [user_disabled]", types)
	}
}

func TestRequireAllowed(t *testing.T) {
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{Allowed: true}}, &stubSink{})

	rec, _ := serve(t, gate.Require(authz.Single(model.PermissionViewGrades)), "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireDeniedWithDiagnostics(t *testing.T) {
	sink := &stubSink{}
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{
		Allowed: false,
		Missing: []model.PermissionKey{model.PermissionInputGrades},
	}}, sink)

	rec, body := serve(t,
		gate.Require(authz.AllOf(model.PermissionViewGrades, model.PermissionInputGrades)),
		"Bearer good-token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "PERMISSION_DENIED" {
		t.Fatalf("error = %+v, want PERMISSION_DENIED", body.Error)
	}
	if body.Error.Fields["missing"] != "input_grades" {
		t.Fatalf("fields = %v, want missing=input_grades", body.Error.Fields)
	}

	types := sink.types()
	if len(types) != 1 || types[0] != model.AuthEventPolicyDenied {
		t.Fatalf("audit events = %v, want [policy_denied]", types)
	}
}

func TestRequireMalformedPolicyAlwaysFails(t *testing.T) {
	// The evaluator would allow, but the policy itself is invalid: the
	// route must answer 400 regardless of the caller's credentials.
	gate := newTestGate(&stubEvaluator{decision: authz.Decision{Allowed: true}}, &stubSink{})

	rec, body := serve(t, gate.Require(authz.AnyOf()), "Bearer good-token")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "BAD_POLICY" {
		t.Fatalf("error = %+v, want BAD_POLICY", body.Error)
	}
}

func TestRequireEvaluatorError(t *testing.T) {
	gate := newTestGate(&stubEvaluator{err: errors.New("store down")}, &stubSink{})

	rec, body := serve(t, gate.Require(authz.Single(model.PermissionViewGrades)), "Bearer good-token")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("error = %+v, want INTERNAL_ERROR", body.Error)
	}
}

func TestOptionalNoToken(t *testing.T) {
	gate := newTestGate(&stubEvaluator{}, &stubSink{})

	rec, body := serve(t, gate.Optional(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if string(body.Data) != `{"state":"anonymous"}` {
		t.Fatalf("data = %s, want anonymous identity", body.Data)
	}
}

func TestOptionalBadTokenProceeds(t *testing.T) {
	gate := newTestGate(&stubEvaluator{}, &stubSink{})

	rec, body := serve(t, gate.Optional(), "Bearer garbage")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if string(body.Data) != `{"state":"rejected"}` {
		t.Fatalf("data = %s, want rejected identity", body.Data)
	}
}

func TestOptionalDisabledUserSurfaces(t *testing.T) {
	gate := newTestGate(&stubEvaluator{}, &stubSink{})

	rec, body := serve(t, gate.Optional(), "Bearer disabled-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body.Error == nil || body.Error.Code != "USER_DISABLED" {
		t.Fatalf("error = %+v, want USER_DISABLED", body.Error)
	}
}

func TestOptionalValidToken(t *testing.T) {
	gate := newTestGate(&stubEvaluator{}, &stubSink{})

	rec, body := serve(t, gate.Optional(), "Bearer good-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if string(body.Data) != `{"state":"authenticated"}` {
		t.Fatalf("data = %s, want authenticated identity", body.Data)
	}
}
