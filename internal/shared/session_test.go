package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "test_session", time.Hour, false), mr
}

func commitAndCookie(t *testing.T, sm *SessionManager, sess *Session) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(context.Background(), rr, sess))
	for _, c := range rr.Result().Cookies() {
		if c.Name == sm.CookieName() {
			return c
		}
	}
	return nil
}

func TestLoadWithoutCookieReturnsFreshSession(t *testing.T) {
	sm, _ := newTestManager(t)

	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, sess.IsNew())
	assert.Empty(t, sess.User())
}

func TestUntouchedSessionIsNotPersisted(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Nil(t, commitAndCookie(t, sm, sess))
	assert.Empty(t, mr.Keys())
}

func TestCommitAndReload(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1")
	sess.Set("k", "v")

	cookie := commitAndCookie(t, sm, sess)
	require.NotNil(t, cookie)
	assert.True(t, mr.Exists("session:"+sess.ID))
	members, err := mr.SMembers("user_sessions:user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{sess.ID}, members)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.User())
	assert.Equal(t, "v", loaded.Get("k"))
	assert.False(t, loaded.IsNew())
}

func TestUnknownCookieGetsNewID(t *testing.T) {
	sm, _ := newTestManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "attacker-chosen"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "attacker-chosen", sess.ID)
}

func TestLoadReportsStoreFailure(t *testing.T) {
	sm, mr := newTestManager(t)
	mr.Close()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "test_session", Value: "abc"})

	_, err := sm.Load(context.Background(), req)
	require.Error(t, err)
}

func TestRenewDropsPreviousKey(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, _ := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	sess.Set("k", "v")
	cookie := commitAndCookie(t, sm, sess)
	oldID := sess.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	sm.Renew(loaded)
	loaded.SetUser("user-2")
	commitAndCookie(t, sm, loaded)

	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+loaded.ID))
	assert.NotEqual(t, oldID, loaded.ID)
}

func TestDestroyRemovesSessionAndIndexEntry(t *testing.T) {
	sm, mr := newTestManager(t)
	sess, _ := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	sess.SetUser("user-3")
	commitAndCookie(t, sm, sess)

	sm.Destroy(sess)
	cookie := commitAndCookie(t, sm, sess)
	require.NotNil(t, cookie)
	assert.Equal(t, -1, cookie.MaxAge)
	assert.False(t, mr.Exists("session:"+sess.ID))
}

func TestPurgeUserRemovesAllSessions(t *testing.T) {
	sm, mr := newTestManager(t)
	var ids []string
	for i := 0; i < 3; i++ {
		sess, _ := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
		sess.SetUser("user-4")
		commitAndCookie(t, sm, sess)
		ids = append(ids, sess.ID)
	}
	other, _ := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	other.SetUser("user-5")
	commitAndCookie(t, sm, other)

	n, err := sm.PurgeUser(context.Background(), "user-4")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for _, id := range ids {
		assert.False(t, mr.Exists("session:"+id))
	}
	assert.True(t, mr.Exists("session:"+other.ID))
}
