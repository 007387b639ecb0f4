package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hpungsan/tome/internal/browse"
	"github.com/hpungsan/tome/internal/i18n"
	"github.com/hpungsan/tome/internal/ops"
)

// SessionCookieName carries the server-side session id.
const SessionCookieName = "tome_session"

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// session is one browser's state. The views carry their own locks.
type session struct {
	id       string
	view     *browse.View
	tags     *browse.TagView
	lastSeen time.Time

	mu     sync.Mutex
	notice string
}

// flash stores a one-shot message for the next rendered page.
func (s *session) flash(msg string) {
	s.mu.Lock()
	s.notice = msg
	s.mu.Unlock()
}

// takeNotice returns and clears the pending message.
func (s *session) takeNotice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.notice
	s.notice = ""
	return msg
}

// Sessions maps session ids to browsing state and drops idle ones.
type Sessions struct {
	mu       sync.Mutex
	items    map[string]*session
	ttl      time.Duration
	now      func() time.Time
	env      *ops.Env
	gate     *browse.Gate
	pageSize int
}

// NewSessions returns an empty store. A non-positive ttl uses DefaultSessionTTL.
func NewSessions(env *ops.Env, gate *browse.Gate, pageSize int, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		items:    make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
		env:      env,
		gate:     gate,
		pageSize: pageSize,
	}
}

// Get returns the request's session, creating one (and its cookie) when
// the cookie is missing, unknown or expired.
func (s *Sessions) Get(w http.ResponseWriter, r *http.Request, lang i18n.Lang) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	if c, err := r.Cookie(SessionCookieName); err == nil {
		if sess, ok := s.items[c.Value]; ok {
			sess.lastSeen = now
			return sess
		}
	}

	sess := &session{
		id:       uuid.NewString(),
		view:     browse.NewView(s.env, s.gate, s.pageSize, lang),
		tags:     browse.NewTagView(s.env, s.pageSize),
		lastSeen: now,
	}
	s.items[sess.id] = sess
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(s.now())
	return len(s.items)
}

func (s *Sessions) sweep(now time.Time) {
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.items, id)
		}
	}
}
