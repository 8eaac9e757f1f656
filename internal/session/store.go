// Package session keeps the single current principal of each login.  A
// session id maps to exactly one owner reference; logging in again on a
// live session replaces the slot instead of adding a second one.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("session: not found")

// Store is the single-slot current-principal store.
type Store interface {
	// Create opens a new slot holding ref and returns its id.
	Create(ctx context.Context, ref model.OwnerRef) (string, error)
	// Get returns the principal in the slot.
	Get(ctx context.Context, sid string) (model.OwnerRef, error)
	// Replace swaps the principal of a live slot.
	Replace(ctx context.Context, sid string, ref model.OwnerRef) error
	// Destroy empties the slot.  Destroying an unknown id is not an error.
	Destroy(ctx context.Context, sid string) error
}

func newID() string { return uuid.NewString() }
