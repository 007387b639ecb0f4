package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/catalog"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/store/storetest"
	"github.com/hpungsan/tome/internal/tags"
)

func newTestSessions(ttl time.Duration) (*Sessions, *time.Time) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := storetest.New()
	env := &ops.Env{
		Backend:  fake,
		Loader:   catalog.NewLoader(fake, config.DefaultConfig(), quiet, nil),
		Resolver: tags.NewResolver(tags.NewCache(), tags.NewTable(nil)),
		Logger:   quiet,
	}
	now := time.Unix(1700000000, 0)
	s := NewSessions(env, nil, 12, ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSessions_ReuseByCookie(t *testing.T) {
	s, _ := newTestSessions(time.Minute)

	rec := httptest.NewRecorder()
	first := s.Get(rec, httptest.NewRequest("GET", "/", nil), i18n.FR)
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, first.id, cookie.Value)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	second := s.Get(rec, req, i18n.FR)
	assert.Same(t, first, second)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, s.Len())
}

func TestSessions_IdleExpiry(t *testing.T) {
	s, now := newTestSessions(time.Minute)

	rec := httptest.NewRecorder()
	first := s.Get(rec, httptest.NewRequest("GET", "/", nil), i18n.FR)
	cookie := sessionCookie(t, rec)

	*now = now.Add(2 * time.Minute)
	assert.Equal(t, 0, s.Len())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	second := s.Get(rec, req, i18n.FR)
	require.NotSame(t, first, second)
	assert.NotEqual(t, first.id, sessionCookie(t, rec).Value)
}

func TestSessions_UnknownCookieStartsFresh(t *testing.T) {
	s, _ := newTestSessions(0)
	assert.Equal(t, DefaultSessionTTL, s.ttl)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	sess := s.Get(rec, req, i18n.EN)
	assert.NotEqual(t, "forged", sess.id)
	assert.Equal(t, i18n.EN, sess.view.Language())
}

func TestSession_Notice(t *testing.T) {
	sess := &session{}
	sess.flash("saved")
	assert.Equal(t, "saved", sess.takeNotice())
	assert.Empty(t, sess.takeNotice())
}
