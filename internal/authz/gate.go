package authz

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"warden/internal/apperr"
	"warden/internal/logs"
	"warden/internal/models"
	"warden/internal/token"
)

// UserSource loads a user together with roles and each role's
// permissions. Satisfied by repo.UserStore.
type UserSource interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Gate struct {
	tokens *token.Service
	users  UserSource
}

func NewGate(tokens *token.Service, users UserSource) *Gate {
	return &Gate{tokens: tokens, users: users}
}

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	userKey   ctxKey = "current_user"
)

// ClaimsFrom returns the verified token claims attached by Authenticate.
func ClaimsFrom(ctx context.Context) (*token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*token.Claims)
	return c, ok
}

// CurrentUser returns the freshly loaded caller attached by Require.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// Authenticate verifies the bearer token and attaches its claims to the
// request context. Missing or invalid token short-circuits with 401.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
			return
		}
		claims, err := g.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			models.WriteError(w, http.StatusUnauthorized, "You are Unauthorized!")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require allows the request iff the caller's current roles include the
// named permission. The caller is re-loaded from the database on every
// check — claims are identity only, so a revoked permission takes
// effect on the next request, not at token expiry.
func (g *Gate) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := g.resolve(r)
			if err != nil {
				models.WriteError(w, apperr.Status(err), apperr.Message(err, "Something went wrong"))
				return
			}
			if !HasPermission(u, permission) {
				logs.Logger.Debugf("authz deny: user=%s missing=%s", u.Email, permission)
				models.WriteError(w, http.StatusForbidden, "You don't have permission to perform this action")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAny allows the request if the caller holds at least one of
// the named permissions. Used for routes whose row-level filtering does
// the fine-grained work (e.g. the user list).
func (g *Gate) RequireAny(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := g.resolve(r)
			if err != nil {
				models.WriteError(w, apperr.Status(err), apperr.Message(err, "Something went wrong"))
				return
			}
			held := PermissionNames(u)
			for _, p := range permissions {
				if _, ok := held[p]; ok {
					ctx := context.WithValue(r.Context(), userKey, u)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			models.WriteError(w, http.StatusForbidden, "You don't have permission to perform this action")
		})
	}
}

// RequireAuthenticated attaches the re-loaded caller without a
// permission check. For routes any signed-in user may hit (own profile).
func (g *Gate) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.resolve(r)
		if err != nil {
			models.WriteError(w, apperr.Status(err), apperr.Message(err, "Something went wrong"))
			return
		}
		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) resolve(r *http.Request) (*models.User, error) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, "You are Unauthorized!")
	}
	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperr.New(apperr.Unauthorized, "You are Unauthorized!")
	}
	u, err := g.users.ByID(r.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			// Token outlived its user.
			return nil, apperr.New(apperr.Unauthorized, "You are Unauthorized!")
		}
		return nil, err
	}
	return u, nil
}
