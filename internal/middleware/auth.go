package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/authz"
	"github.com/classware/classman-backend/internal/model"
	"github.com/classware/classman-backend/internal/response"
	"github.com/classware/classman-backend/internal/service"
)

const (
	// ContextKeyIdentity is the Gin context key for the resolved identity.
	ContextKeyIdentity = "identity"
)

// TokenVerifier is the verification half of the credential issuer.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*service.Claims, error)
}

// UserResolver maps verified claims to a live user record.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID int64) (*model.User, error)
}

// PolicyEvaluator decides a policy for a resolved user.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, user *model.User, policy authz.Policy) (authz.Decision, error)
}

// EventSink receives best-effort audit events. Must never block.
type EventSink interface {
	Record(event model.AuthEvent)
}

// Gate is the per-request authorization pipeline: extract bearer token →
// verify → resolve user → evaluate policy. Each step reads fresh state;
// nothing is cached between requests.
type Gate struct {
	tokens TokenVerifier
	users  UserResolver
	eval   PolicyEvaluator
	events EventSink
	log    zerolog.Logger
}

// NewGate creates a new Gate.
func NewGate(tokens TokenVerifier, users UserResolver, eval PolicyEvaluator, events EventSink, log zerolog.Logger) *Gate {
	return &Gate{
		tokens: tokens,
		users:  users,
		eval:   eval,
		events: events,
		log:    log.With().Str("component", "gate").Logger(),
	}
}

// Require returns a middleware enforcing authentication plus the given
// policy. The policy is validated once, up front: a malformed declaration
// turns every request into HTTP 400 rather than an accidental allow.
func (g *Gate) Require(policy authz.Policy) gin.HandlerFunc {
	if err := policy.Validate(); err != nil {
		g.log.Error().Err(err).Str("policy", policy.Describe()).Msg("Route declared a malformed policy")
		return func(c *gin.Context) {
			response.AbortFail(c, http.StatusBadRequest, response.ErrBadPolicy)
		}
	}

	return func(c *gin.Context) {
		identity, failCode := g.authenticate(c)
		if !identity.Authenticated() {
			status := http.StatusUnauthorized
			if failCode == response.ErrInternal {
				status = http.StatusInternalServerError
			}
			response.AbortFail(c, status, failCode)
			return
		}

		decision, err := g.eval.Evaluate(c.Request.Context(), identity.User, policy)
		if err != nil {
			g.log.Error().Err(err).Int64("user_id", identity.User.ID).Msg("Policy evaluation failed")
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		if !decision.Allowed {
			g.events.Record(model.AuthEvent{
				EventType: model.AuthEventPolicyDenied,
				UserID:    &identity.User.ID,
				Username:  identity.User.Username,
				Detail:    fmt.Sprintf("required: %s", policy.Describe()),
			})
			response.AbortFailWithFields(c, http.StatusForbidden, response.ErrPermissionDenied, policyFields(decision))
			return
		}

		c.Set(ContextKeyIdentity, authz.AuthenticatedIdentity(identity.User))
		c.Next()
	}
}

// Optional returns the soft-auth middleware: absent or rejected credentials
// do not block the request, only the identity attachment. The one exception
// is a valid token for a disabled account, which always surfaces — a
// deactivated user must not browse as anonymous without noticing.
func (g *Gate) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, present := extractBearer(c)
		if !present {
			c.Set(ContextKeyIdentity, authz.AnonymousIdentity())
			c.Next()
			return
		}

		claims, err := g.tokens.VerifyToken(tokenStr)
		if err != nil {
			g.log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Rejected credential on soft-auth endpoint, proceeding anonymously")
			c.Set(ContextKeyIdentity, authz.RejectedIdentity())
			c.Next()
			return
		}

		user, err := g.users.ResolveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserDisabled):
				g.recordDisabled(claims)
				response.AbortFail(c, http.StatusUnauthorized, response.ErrUserDisabled)
			case errors.Is(err, service.ErrUserNotFound):
				g.log.Warn().Int64("user_id", claims.UserID).Msg("Token for unknown user on soft-auth endpoint, proceeding anonymously")
				c.Set(ContextKeyIdentity, authz.RejectedIdentity())
				c.Next()
			default:
				g.log.Error().Err(err).Msg("User resolution failed")
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeyIdentity, authz.AuthenticatedIdentity(user))
		c.Next()
	}
}

// authenticate runs token extraction, verification, and user resolution.
// On failure it returns the response code the hard-auth path should send.
func (g *Gate) authenticate(c *gin.Context) (authz.Identity, response.ErrCode) {
	tokenStr, present := extractBearer(c)
	if !present {
		return authz.AnonymousIdentity(), response.ErrTokenRequired
	}

	claims, err := g.tokens.VerifyToken(tokenStr)
	if err != nil {
		g.events.Record(model.AuthEvent{
			EventType: model.AuthEventTokenRejected,
			Detail:    err.Error(),
		})
		if errors.Is(err, service.ErrTokenExpired) {
			return authz.RejectedIdentity(), response.ErrTokenExpired
		}
		return authz.RejectedIdentity(), response.ErrTokenInvalid
	}

	user, err := g.users.ResolveUser(c.Request.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserDisabled):
			g.recordDisabled(claims)
			return authz.RejectedIdentity(), response.ErrUserDisabled
		case errors.Is(err, service.ErrUserNotFound):
			g.events.Record(model.AuthEvent{
				EventType: model.AuthEventTokenRejected,
				UserID:    &claims.UserID,
				Username:  claims.Username,
				Detail:    "token references unknown user",
			})
			return authz.RejectedIdentity(), response.ErrTokenInvalid
		default:
			g.log.Error().Err(err).Msg("User resolution failed")
			return authz.RejectedIdentity(), response.ErrInternal
		}
	}

	return authz.AuthenticatedIdentity(user), ""
}

func (g *Gate) recordDisabled(claims *service.Claims) {
	g.events.Record(model.AuthEvent{
		EventType: model.AuthEventUserDisabled,
		UserID:    &claims.UserID,
		Username:  claims.Username,
		Detail:    "valid token presented for disabled account",
	})
}

// GetIdentity retrieves the resolved identity from the Gin context.
// Returns an anonymous identity when no gate middleware ran.
func GetIdentity(c *gin.Context) authz.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return authz.AnonymousIdentity()
	}
	identity, ok := val.(authz.Identity)
	if !ok {
		return authz.AnonymousIdentity()
	}
	return identity
}

// policyFields renders the denial diagnostics for the 403 body.
func policyFields(decision authz.Decision) map[string]string {
	fields := map[string]string{
		"required": decision.Policy.Describe(),
	}
	if len(decision.Missing) > 0 {
		missing := make([]string, len(decision.Missing))
		for i, k := range decision.Missing {
			missing[i] = string(k)
		}
		fields["missing"] = strings.Join(missing, ", ")
	}
	return fields
}

// extractBearer pulls the token out of the Authorization header, with a
// query-param fallback for WebSocket and SSE clients that cannot send
// headers.
func extractBearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1], true
		}
	}

	if token := c.Query("token"); token != "" {
		return token, true
	}

	return "", false
}
