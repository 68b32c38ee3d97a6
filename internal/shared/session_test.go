package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "praxis_session", time.Hour, false)
}

func TestLoadWithoutCookieCreatesAnonymousSession(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.UserEmail())
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("a@x.com")
	sess.Set("theme", "dark")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, sess))
	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	loaded, err := sm.Load(context.Background(), req2)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", loaded.UserEmail())
	assert.Equal(t, "dark", loaded.Get("theme"))
}

func TestDestroyClearsSession(t *testing.T) {
	sm := newTestSessionManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("a@x.com")
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, sess))

	sm.Destroy(sess)
	rr2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr2, sess))

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rr.Result().Cookies()[0])
	loaded, err := sm.Load(context.Background(), req2)
	require.NoError(t, err)
	assert.Empty(t, loaded.UserEmail())
}

func TestSessionIdentityResolver(t *testing.T) {
	resolver := SessionIdentityResolver{}

	_, ok := resolver.CurrentIdentity(context.Background())
	assert.False(t, ok, "no session in context")

	anon := &Session{ID: "s1"}
	_, ok = resolver.CurrentIdentity(ContextWithSession(context.Background(), anon))
	assert.False(t, ok, "anonymous session has no identity")

	authed := &Session{ID: "s2"}
	authed.SetUser("a@x.com")
	identity, ok := resolver.CurrentIdentity(ContextWithSession(context.Background(), authed))
	require.True(t, ok)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "s2", identity.ID)
}
