package notice

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.Mutex
	byActor map[string]map[string]Notice
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byActor: make(map[string]map[string]Notice)}
}

func (s *MemoryStore) Put(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byActor[n.Actor]
	if !ok {
		m = make(map[string]Notice)
		s.byActor[n.Actor] = m
	}
	m[n.ID] = n
	return nil
}

// List also prunes the actor's expired notices.
func (s *MemoryStore) List(_ context.Context, actor string, now time.Time) ([]Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Notice{}
	for id, n := range s.byActor[actor] {
		if n.Expired(now) {
			delete(s.byActor[actor], id)
			continue
		}
		out = append(out, n)
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byActor[actor][id]; !ok {
		return ErrNotFound
	}
	delete(s.byActor[actor], id)
	return nil
}
