package ehr

import (
	"errors"
	"testing"
	"time"
)

func TestSessionStore_Expiry(t *testing.T) {
	now := fixedNow
	store := NewSessionStore(time.Hour, func() time.Time { return now })

	sess := store.Open(0, "dr.smith", newTestEditor())
	if sess.ID == "" || store.Len() != 1 {
		t.Fatalf("unexpected session %+v", sess)
	}

	now = now.Add(50 * time.Minute)
	if err := store.Do(sess.ID, func(*Session) error { return nil }); err != nil {
		t.Fatalf("session should still be open: %v", err)
	}

	// Do touched the session, so the idle clock restarts.
	now = now.Add(50 * time.Minute)
	if err := store.Do(sess.ID, func(*Session) error { return nil }); err != nil {
		t.Fatalf("touched session expired early: %v", err)
	}

	now = now.Add(61 * time.Minute)
	err := store.Do(sess.ID, func(*Session) error { return nil })
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session was not dropped")
	}
}

func TestSessionStore_OpenSweeps(t *testing.T) {
	now := fixedNow
	store := NewSessionStore(time.Hour, func() time.Time { return now })
	store.Open(0, "a", newTestEditor())
	now = now.Add(2 * time.Hour)
	store.Open(0, "b", newTestEditor())
	if store.Len() != 1 {
		t.Errorf("expected stale session swept, have %d", store.Len())
	}
}

func TestSessionStore_Close(t *testing.T) {
	store := NewSessionStore(0, nil)
	sess := store.Open(3, "a", newTestEditor())
	if err := store.Close(sess.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second close, got %v", err)
	}
}

func TestSessionStore_DoPropagatesError(t *testing.T) {
	store := NewSessionStore(0, nil)
	sess := store.Open(0, "a", newTestEditor())
	boom := errors.New("boom")
	if err := store.Do(sess.ID, func(*Session) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
