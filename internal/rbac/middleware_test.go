package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/praxis-hq/praxis/internal/cache"
)

func newGateFixture(t *testing.T, resolver stubResolver) Middleware {
	t.Helper()
	store := newMemStore()
	store.roles["lead@x.com"] = RoleTeamLead
	store.roles["intern@x.com"] = RoleIntern
	ev := NewEvaluator(store, cache.New[bool](time.Minute), time.Minute, nil)
	return Middleware{Evaluator: ev, Identity: resolver}
}

func gateStatus(t *testing.T, mw func(http.Handler) http.Handler) int {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	return rr.Code
}

func TestRequireAnyAdmitsMatchingRole(t *testing.T) {
	m := newGateFixture(t, asUser("lead@x.com"))
	assert.Equal(t, http.StatusNoContent, gateStatus(t, m.RequireAny(PermTeamManage, PermUserAssignRoles)))
}

func TestRequireAnyDeniesWithoutMatch(t *testing.T) {
	m := newGateFixture(t, asUser("intern@x.com"))
	assert.Equal(t, http.StatusForbidden, gateStatus(t, m.RequireAny(PermTeamManage)))
}

func TestRequireAnyUnauthenticated(t *testing.T) {
	m := newGateFixture(t, stubResolver{})
	assert.Equal(t, http.StatusUnauthorized, gateStatus(t, m.RequireAny(PermTeamView)))
}

func TestRequireAnyWithNoPermissionsAdmitsNobody(t *testing.T) {
	m := newGateFixture(t, asUser("lead@x.com"))
	assert.Equal(t, http.StatusForbidden, gateStatus(t, m.RequireAny()))
}

func TestRequireAllNeedsEveryPermission(t *testing.T) {
	m := newGateFixture(t, asUser("lead@x.com"))
	assert.Equal(t, http.StatusNoContent, gateStatus(t, m.RequireAll(PermTeamView, PermTeamManage)))
	assert.Equal(t, http.StatusForbidden, gateStatus(t, m.RequireAll(PermTeamManage, PermUserAssignRoles)))
}

func TestRequireAllWithNoPermissionsAdmitsAuthenticated(t *testing.T) {
	m := newGateFixture(t, asUser("intern@x.com"))
	assert.Equal(t, http.StatusNoContent, gateStatus(t, m.RequireAll()))
}
