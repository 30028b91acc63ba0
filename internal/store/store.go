// internal/store/store.go

// Package store is the remote document store boundary: one JSON
// document per tournament, last write wins, with a change stream for
// spectator sessions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtmix/courtmix/internal/models"
)

// ErrNotFound reports that a tournament id has no document.
var ErrNotFound = errors.New("tournament document not found")

// PersistenceError wraps any failure from the backing store during a
// read or write. Callers keep their local state when they see one.
type PersistenceError struct {
	Op  string
	ID  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the document transport. Put replaces the whole document;
// there is no field-level merge. Watch delivers each new revision of
// the document to the returned channel until the context ends or the
// cancel func is called.
type Store interface {
	Get(ctx context.Context, id string) (*models.TournamentDocument, error)
	Put(ctx context.Context, doc *models.TournamentDocument) error
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, id string) (<-chan *models.TournamentDocument, func(), error)
}
