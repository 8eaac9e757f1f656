// Package service holds the resource managers and the reservation
// workflow.  Every operation takes the acting principal explicitly and
// reports failures through the sentinel errors below.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = access.ErrForbidden
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrBanned          = errors.New("banned")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BannedError carries the active ban that stopped an actor.
type BannedError struct {
	Ban model.Ban
}

func (e *BannedError) Error() string { return e.Ban.Message() }
func (e *BannedError) Unwrap() error { return ErrBanned }

// storeErr maps repository sentinels onto the service taxonomy, naming
// the entity in the message.
func storeErr(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", entity, ErrConflict)
	case errors.Is(err, repository.ErrRoomUnavailable):
		return fmt.Errorf("%s: room is not available: %w", entity, ErrConflict)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w: duplicate value", entity, ErrConflict)
	}
	return err
}
