package authz

import (
	"context"

	"github.com/classware/classman-backend/internal/model"
)

// GrantSource is the read side of the permission store the evaluator needs.
// Implemented by repository.PermissionRepository.
type GrantSource interface {
	// HasGrant reports whether userID holds an effective grant for key.
	HasGrant(ctx context.Context, userID int64, key model.PermissionKey) (bool, error)
	// EffectiveKeys returns every key userID holds effectively right now.
	EffectiveKeys(ctx context.Context, userID int64) ([]model.PermissionKey, error)
}

// Decision is the result of evaluating one policy for one user.
type Decision struct {
	Allowed bool
	// Policy echoes the evaluated requirement for diagnostics.
	Policy Policy
	// Missing lists the keys an AllOf policy found absent. Empty for other
	// kinds and for allowed decisions.
	Missing []model.PermissionKey
}

// Evaluator decides policies against the grant store. It holds no cache:
// every decision re-reads the store, so concurrent grant and revoke
// operations are visible to the next request.
type Evaluator struct {
	grants GrantSource
}

// NewEvaluator creates an Evaluator over the given grant source.
func NewEvaluator(grants GrantSource) *Evaluator {
	return &Evaluator{grants: grants}
}

// Evaluate decides whether user satisfies policy. The user must already be
// authenticated and active; the gate enforces that before any policy runs.
// A store read failure is returned as an error (internal), never mapped to
// deny.
func (e *Evaluator) Evaluate(ctx context.Context, user *model.User, policy Policy) (Decision, error) {
	if err := policy.Validate(); err != nil {
		return Decision{}, err
	}

	d := Decision{Policy: policy}

	switch policy.Kind {
	case KindNone:
		d.Allowed = true
		return d, nil

	case KindSingle:
		ok, err := e.grants.HasGrant(ctx, user.ID, policy.Keys[0])
		if err != nil {
			return Decision{}, err
		}
		d.Allowed = ok
		return d, nil

	case KindAnyOf:
		held, err := e.heldSet(ctx, user.ID)
		if err != nil {
			return Decision{}, err
		}
		for _, k := range policy.Keys {
			if held[k] {
				d.Allowed = true
				return d, nil
			}
		}
		return d, nil

	case KindAllOf:
		held, err := e.heldSet(ctx, user.ID)
		if err != nil {
			return Decision{}, err
		}
		for _, k := range policy.Keys {
			if !held[k] {
				d.Missing = append(d.Missing, k)
			}
		}
		d.Allowed = len(d.Missing) == 0
		return d, nil

	case KindUserType:
		for _, t := range policy.Types {
			if user.UserType == t {
				d.Allowed = true
				return d, nil
			}
		}
		return d, nil
	}

	// Unreachable: Validate rejects unknown kinds.
	return Decision{}, ErrEmptyPolicy
}

func (e *Evaluator) heldSet(ctx context.Context, userID int64) (map[model.PermissionKey]bool, error) {
	keys, err := e.grants.EffectiveKeys(ctx, userID)
	if err != nil {
		return nil, err
	}
	held := make(map[model.PermissionKey]bool, len(keys))
	for _, k := range keys {
		held[k] = true
	}
	return held, nil
}
