package ehr

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionIdle is how long an untouched editing session survives.
const DefaultSessionIdle = 2 * time.Hour

// Session is one open editor. EHRID is zero until the record is first saved.
type Session struct {
	ID        string
	EHRID     int64
	Actor     string
	Editor    *Editor
	CreatedAt time.Time
	TouchedAt time.Time

	// mu serializes work on this editor only; other sessions never wait on it.
	mu sync.Mutex
}

// SessionStore keeps open editors in memory. The store lock covers the
// session map; each session carries its own lock for edits and saves.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

func NewSessionStore(idle time.Duration, now func() time.Time) *SessionStore {
	if idle <= 0 {
		idle = DefaultSessionIdle
	}
	if now == nil {
		now = time.Now
	}
	return &SessionStore{sessions: make(map[string]*Session), idle: idle, now: now}
}

// Open registers an editor and drops sessions idle for longer than the
// store's limit.
func (s *SessionStore) Open(ehrID int64, actor string, ed *Editor) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	sess := &Session{ID: uuid.NewString(), EHRID: ehrID, Actor: actor, Editor: ed, CreatedAt: now, TouchedAt: now}
	s.sessions[sess.ID] = sess
	return sess
}

// Do runs fn against the session while holding that session's lock.
func (s *SessionStore) Do(id string, fn func(*Session) error) error {
	sess, err := s.touch(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

func (s *SessionStore) touch(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, s.now()) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.TouchedAt = s.now()
	return sess, nil
}

func (s *SessionStore) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.TouchedAt) > s.idle
}

func (s *SessionStore) sweepLocked(now time.Time) {
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
		}
	}
}
