package authz

import (
	"errors"
	"strings"
	"testing"

	"github.com/classware/classman-backend/internal/model"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"authenticated", Authenticated(), false},
		{"single known key", Single(model.PermissionViewGrades), false},
		{"any of known keys", AnyOf(model.PermissionViewGrades, model.PermissionInputGrades), false},
		{"all of known keys", AllOf(model.PermissionViewGrades, model.PermissionExportGrades), false},
		{"user type", UserType(model.UserTypeAdmin), false},
		{"any of empty", AnyOf(), true},
		{"all of empty", AllOf(), true},
		{"user type empty", UserType(), true},
		{"unknown key", Single("delete_everything"), true},
		{"unknown type", UserType("superuser"), true},
		{"unknown kind", Policy{Kind: "whatever"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicyValidateEmptyIsErrEmptyPolicy(t *testing.T) {
	if err := AnyOf().Validate(); !errors.Is(err, ErrEmptyPolicy) {
		t.Fatalf("expected ErrEmptyPolicy, got %v", err)
	}
}

func TestPolicyDescribe(t *testing.T) {
	if got := Authenticated().Describe(); got != "authenticated" {
		t.Fatalf("Describe() = %q", got)
	}
	if got := Single(model.PermissionViewGrades).Describe(); !strings.Contains(got, "view_grades") {
		t.Fatalf("Describe() = %q, want it to name view_grades", got)
	}
	got := AllOf(model.PermissionViewGrades, model.PermissionExportGrades).Describe()
	if !strings.Contains(got, "all of") || !strings.Contains(got, "export_grades") {
		t.Fatalf("Describe() = %q", got)
	}
	if got := UserType(model.UserTypeAdmin).Describe(); !strings.Contains(got, "admin") {
		t.Fatalf("Describe() = %q", got)
	}
}
