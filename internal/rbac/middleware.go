package rbac

import (
	"net/http"

	"github.com/praxis-hq/praxis/internal/platform/httpx"
	"github.com/praxis-hq/praxis/internal/shared"
)

// Middleware wires declarative permission gates for HTTP routes. A gate
// distinguishes the unauthenticated case (401, sign in) from the denied
// case (403, access denied) so callers can render each differently.
type Middleware struct {
	Evaluator *Evaluator
	Identity  shared.IdentityResolver
}

// RequireAny admits requests whose identity holds at least one of perms.
// Evaluator semantics apply: a gate configured with no permissions admits
// nobody.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.gate(func(r *http.Request, subject string) bool {
		return m.Evaluator.AllowedAny(r.Context(), subject, perms...)
	})
}

// RequireAll admits requests whose identity holds every element of perms.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.gate(func(r *http.Request, subject string) bool {
		return m.Evaluator.AllowedAll(r.Context(), subject, perms...)
	})
}

func (m Middleware) gate(allowed func(r *http.Request, subject string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := m.Identity.CurrentIdentity(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", "sign in to continue")
				return
			}
			if !allowed(r, identity.Email) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "you lack access to this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
