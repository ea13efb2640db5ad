// Package store keeps uploaded seat maps between requests.  A session holds
// the current document bytes and is edited under an exclusive lock so that
// two applies against the same session never interleave.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("seat map session not found")
	ErrSessionLocked   = errors.New("seat map session is being edited")
)

// Session is an uploaded seat map and its bookkeeping.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Document  []byte    `json:"document"`
	Edits     int       `json:"edits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unlock releases a session lock.  Calling it twice is harmless.
type Unlock func()

// DocumentStore is implemented by RedisStore and MemoryStore.
type DocumentStore interface {
	Create(ctx context.Context, name, owner string, doc []byte) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// Save replaces the document of an existing session and refreshes its TTL.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (Unlock, error)
}
