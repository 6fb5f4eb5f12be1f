package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/classware/classman-backend/internal/model"
)

// stubGrants is a GrantSource backed by a fixed key set.
type stubGrants struct {
	keys map[model.PermissionKey]bool
	err  error
}

func (s *stubGrants) HasGrant(_ context.Context, _ int64, key model.PermissionKey) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.keys[key], nil
}

func (s *stubGrants) EffectiveKeys(_ context.Context, _ int64) ([]model.PermissionKey, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []model.PermissionKey
	for k := range s.keys {
		out = append(out, k)
	}
	return out, nil
}

func teacherUser() *model.User {
	return &model.User{ID: 7, Username: "t.rahma", UserType: model.UserTypeTeacher, Status: model.UserStatusActive}
}

// The store reports view_grades as effective; an input_grades grant has
// already expired and therefore does not appear at all.
func holdsViewGradesOnly() *stubGrants {
	return &stubGrants{keys: map[model.PermissionKey]bool{
		model.PermissionViewGrades: true,
	}}
}

func TestEvaluateAuthenticated(t *testing.T) {
	e := NewEvaluator(holdsViewGradesOnly())
	d, err := e.Evaluate(context.Background(), teacherUser(), Authenticated())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed {
		t.Fatal("authenticated policy should always allow a resolved user")
	}
}

func TestEvaluateSingle(t *testing.T) {
	e := NewEvaluator(holdsViewGradesOnly())

	d, err := e.Evaluate(context.Background(), teacherUser(), Single(model.PermissionViewGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected allow for held key")
	}

	d, err = e.Evaluate(context.Background(), teacherUser(), Single(model.PermissionInputGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected deny for key the user does not hold")
	}
}

func TestEvaluateAnyOf(t *testing.T) {
	e := NewEvaluator(holdsViewGradesOnly())

	d, err := e.Evaluate(context.Background(), teacherUser(),
		AnyOf(model.PermissionViewGrades, model.PermissionInputGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed {
		t.Fatal("AnyOf should allow when one key is held")
	}

	d, err = e.Evaluate(context.Background(), teacherUser(),
		AnyOf(model.PermissionManagePosts, model.PermissionInputGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Allowed {
		t.Fatal("AnyOf should deny when no key is held")
	}
}

func TestEvaluateAllOfReportsMissing(t *testing.T) {
	e := NewEvaluator(holdsViewGradesOnly())

	d, err := e.Evaluate(context.Background(), teacherUser(),
		AllOf(model.PermissionViewGrades, model.PermissionInputGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Allowed {
		t.Fatal("AllOf should deny when a key is missing")
	}
	if len(d.Missing) != 1 || d.Missing[0] != model.PermissionInputGrades {
		t.Fatalf("Missing = %v, want [input_grades]", d.Missing)
	}
}

func TestEvaluateAllOfAllowsWhenComplete(t *testing.T) {
	e := NewEvaluator(&stubGrants{keys: map[model.PermissionKey]bool{
		model.PermissionViewGrades:   true,
		model.PermissionExportGrades: true,
	}})

	d, err := e.Evaluate(context.Background(), teacherUser(),
		AllOf(model.PermissionViewGrades, model.PermissionExportGrades))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed {
		t.Fatal("AllOf should allow when every key is held")
	}
	if len(d.Missing) != 0 {
		t.Fatalf("Missing = %v, want empty", d.Missing)
	}
}

func TestEvaluateUserType(t *testing.T) {
	// No grants at all: type policies must not consult the store.
	e := NewEvaluator(&stubGrants{err: errors.New("store must not be read")})

	d, err := e.Evaluate(context.Background(), teacherUser(), UserType(model.UserTypeTeacher, model.UserTypeAdmin))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Allowed {
		t.Fatal("expected allow for matching user type")
	}

	d, err = e.Evaluate(context.Background(), teacherUser(), UserType(model.UserTypeAdmin))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected deny for non-matching user type")
	}
}

func TestEvaluateStoreErrorIsNotADenial(t *testing.T) {
	storeErr := errors.New("connection reset")
	e := NewEvaluator(&stubGrants{err: storeErr})

	_, err := e.Evaluate(context.Background(), teacherUser(), Single(model.PermissionViewGrades))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to surface, got %v", err)
	}

	_, err = e.Evaluate(context.Background(), teacherUser(), AllOf(model.PermissionViewGrades))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to surface, got %v", err)
	}
}

func TestEvaluateRejectsInvalidPolicy(t *testing.T) {
	e := NewEvaluator(holdsViewGradesOnly())
	if _, err := e.Evaluate(context.Background(), teacherUser(), AnyOf()); err == nil {
		t.Fatal("expected error for empty policy")
	}
}
