// Package notice keeps the console's dismissible banners. A notice belongs
// to one actor and disappears on its own once its TTL passes.
package notice

import (
	"context"
	"errors"
	"sort"
	"time"
)

type Level string

const (
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// DefaultTTL is how long a banner stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

var ErrNotFound = errors.New("notice not found")

type Notice struct {
	ID        string    `json:"id"`
	Actor     string    `json:"-"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether n is no longer visible at now.
func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// Store persists notices until they expire.
type Store interface {
	Put(ctx context.Context, n Notice) error
	// List returns the actor's unexpired notices, oldest first.
	List(ctx context.Context, actor string, now time.Time) ([]Notice, error)
	Delete(ctx context.Context, actor, id string) error
}

func sortByCreated(ns []Notice) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.Before(ns[j].CreatedAt)
	})
}
