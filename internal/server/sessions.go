package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhaystar2004/dynamic-form/pkg/controller"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "dynform_session"

// session pairs a browser with its own controller. mu serializes multi-step
// requests such as submit, which applies posted values before submitting.
type session struct {
	mu       sync.Mutex
	id       string
	csrf     string
	ctrl     *controller.Controller
	logger   *slog.Logger
	cancel   context.CancelFunc
	lastSeen time.Time
}

type controllerFactory func(logger *slog.Logger) (*controller.Controller, error)

// sessionStore keeps sessions in memory only; they end with the process.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  controllerFactory
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

func newSessionStore(factory controllerFactory, logger *slog.Logger, ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		factory:  factory,
		logger:   logger,
		ttl:      ttl,
		now:      now,
	}
}

// lookup returns the live session for id and marks it as seen.
func (s *sessionStore) lookup(id string) (*session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(sess, now) {
		s.dropLocked(sess)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// create starts a session with a fresh controller and its command loop.
func (s *sessionStore) create() (*session, error) {
	id := uuid.NewString()
	logger := s.logger.With(slog.String("session_id", id))
	ctrl, err := s.factory(logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:       id,
		csrf:     uuid.NewString(),
		ctrl:     ctrl,
		logger:   logger,
		cancel:   cancel,
		lastSeen: s.now(),
	}
	go func() {
		_ = ctrl.Loop(ctx)
	}()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	logger.Debug("session started")
	return sess, nil
}

// sweep drops expired sessions and returns how many were removed.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for _, sess := range s.sessions {
		if s.expired(sess, now) {
			s.dropLocked(sess)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl
}

func (s *sessionStore) dropLocked(sess *session) {
	sess.cancel()
	delete(s.sessions, sess.id)
	sess.logger.Debug("session expired")
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// closeAll stops every command loop.
func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.cancel()
	}
	clear(s.sessions)
}
