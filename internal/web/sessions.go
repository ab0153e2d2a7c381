package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-uploader/internal/workflow"
)

// SessionCookie names the cookie that binds a browser to its workflow
const SessionCookie = "receipt_session"

// Session limits
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// ControllerFactory builds the workflow for a new session
type ControllerFactory func() *workflow.Controller

type session struct {
	controller *workflow.Controller
	lastSeen   time.Time
}

// Sessions maps browser sessions to their workflow controllers.
// Sessions idle for longer than the TTL are dropped, and when the registry is
// full the least recently seen session makes room for a new one.
type Sessions struct {
	factory     ControllerFactory
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions creates an empty session registry with the default limits
func NewSessions(factory ControllerFactory) *Sessions {
	return NewSessionsWithLimits(factory, DefaultSessionTTL, DefaultMaxSessions)
}

// NewSessionsWithLimits creates an empty session registry
func NewSessionsWithLimits(factory ControllerFactory, ttl time.Duration, maxSessions int) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Sessions{
		factory:     factory,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

// Controller returns the workflow for the request's session,
// starting a new session and setting its cookie when none is known.
func (s *Sessions) Controller(w http.ResponseWriter, r *http.Request) *workflow.Controller {
	if c, ok := s.Lookup(r); ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	id := uuid.New().String()
	c := s.factory()
	s.sessions[id] = &session{controller: c, lastSeen: now}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c
}

// Lookup returns the workflow for the request's session without starting one
func (s *Sessions) Lookup(r *http.Request) (*workflow.Controller, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[cookie.Value]
	if !ok {
		return nil, false
	}
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, cookie.Value)
		return nil, false
	}
	sess.lastSeen = now
	return sess.controller, true
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops expired sessions and, if still full, the least recently seen one.
// Callers must hold s.mu.
func (s *Sessions) sweep(now time.Time) {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			continue
		}
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	if len(s.sessions) >= s.maxSessions && oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
