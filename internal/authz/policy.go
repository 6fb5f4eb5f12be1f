// Package authz holds the authorization core: declarative policies, the
// three-valued request identity, and the evaluator that decides them
// against the permission store.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/classware/classman-backend/internal/model"
)

// ErrEmptyPolicy marks a policy declared with no keys or types. This is a
// developer error at the declaration site and surfaces as HTTP 400, never
// as an implicit allow or deny.
var ErrEmptyPolicy = errors.New("policy declared with no keys or types")

// PolicyKind discriminates the policy union.
type PolicyKind string

const (
	// KindNone is the zero policy: authentication only, no capability check.
	KindNone PolicyKind = "none"
	// KindSingle requires one effective grant.
	KindSingle PolicyKind = "single"
	// KindAnyOf requires at least one of the listed grants.
	KindAnyOf PolicyKind = "any_of"
	// KindAllOf requires every listed grant.
	KindAllOf PolicyKind = "all_of"
	// KindUserType requires the user's type to be in the listed set,
	// independent of permission grants.
	KindUserType PolicyKind = "user_type"
)

// Policy is a declarative authorization requirement attached to an
// operation. It is plain data so routes can be introspected, logged, and
// unit-tested without issuing a request.
type Policy struct {
	Kind  PolicyKind
	Keys  []model.PermissionKey
	Types []model.UserType
}

// Authenticated is the policy that only requires a resolved, active user.
func Authenticated() Policy {
	return Policy{Kind: KindNone}
}

// Single requires one effective grant for key.
func Single(key model.PermissionKey) Policy {
	return Policy{Kind: KindSingle, Keys: []model.PermissionKey{key}}
}

// AnyOf requires at least one effective grant among keys.
func AnyOf(keys ...model.PermissionKey) Policy {
	return Policy{Kind: KindAnyOf, Keys: keys}
}

// AllOf requires an effective grant for every key.
func AllOf(keys ...model.PermissionKey) Policy {
	return Policy{Kind: KindAllOf, Keys: keys}
}

// UserType requires the user's type to be one of types.
func UserType(types ...model.UserType) Policy {
	return Policy{Kind: KindUserType, Types: types}
}

// Validate reports declaration errors: empty key/type lists or keys outside
// the closed registry. Called for every route policy at startup.
func (p Policy) Validate() error {
	switch p.Kind {
	case KindNone:
		return nil
	case KindSingle, KindAnyOf, KindAllOf:
		if len(p.Keys) == 0 {
			return ErrEmptyPolicy
		}
		for _, k := range p.Keys {
			if !model.KnownPermissionKey(k) {
				return fmt.Errorf("unknown permission key %q", k)
			}
		}
		return nil
	case KindUserType:
		if len(p.Types) == 0 {
			return ErrEmptyPolicy
		}
		for _, t := range p.Types {
			if !t.Valid() {
				return fmt.Errorf("unknown user type %q", t)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown policy kind %q", p.Kind)
	}
}

// Describe renders the policy for 403 diagnostics and logs.
func (p Policy) Describe() string {
	switch p.Kind {
	case KindNone:
		return "authenticated"
	case KindSingle:
		return fmt.Sprintf("permission %s", p.Keys[0])
	case KindAnyOf:
		return fmt.Sprintf("any of [%s]", joinKeys(p.Keys))
	case KindAllOf:
		return fmt.Sprintf("all of [%s]", joinKeys(p.Keys))
	case KindUserType:
		types := make([]string, len(p.Types))
		for i, t := range p.Types {
			types[i] = string(t)
		}
		return fmt.Sprintf("user type [%s]", strings.Join(types, ", "))
	default:
		return string(p.Kind)
	}
}

func joinKeys(keys []model.PermissionKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
