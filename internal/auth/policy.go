package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/performance-evaluation/pkg/logger"
)

// Predicate decides whether an actor may pass a guard.
type Predicate func(u *User) bool

// HasPermission passes actors whose token carries the permission.
func HasPermission(permission string) Predicate {
	return func(u *User) bool { return u.HasPermission(permission) }
}

// HasRole passes actors holding any of the named roles.
func HasRole(names ...string) Predicate {
	return func(u *User) bool { return u.HasRole(names...) }
}

// AnyOf passes when at least one predicate passes.
func AnyOf(predicates ...Predicate) Predicate {
	return func(u *User) bool {
		for _, p := range predicates {
			if p(u) {
				return true
			}
		}
		return false
	}
}

// Authorizer turns predicates into route middlewares. All access decisions
// read the actor rebuilt from token claims; no database round trip happens
// here.
type Authorizer struct {
	logger *slog.Logger
}

func NewAuthorizer(lg *slog.Logger) *Authorizer {
	if lg == nil {
		lg = logger.L()
	}
	return &Authorizer{logger: lg}
}

// Require guards a route with a predicate: 401 when no actor is attached,
// 403 when the predicate rejects.
func (a *Authorizer) Require(predicate Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				a.logger.Warn("authorization check failed: user not found in context")
				writeAuthError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			if !predicate(user) {
				a.logger.WarnContext(r.Context(), "access denied",
					"user_id", user.ID,
					"role", user.Role,
					"path", r.URL.Path)
				writeAuthError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authorizer) RequirePermission(permission string) func(http.Handler) http.Handler {
	return a.Require(HasPermission(permission))
}

func (a *Authorizer) RequireRole(names ...string) func(http.Handler) http.Handler {
	return a.Require(HasRole(names...))
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
