// internal/app/store/storeerr/storeerr.go

// Package storeerr maps MongoDB driver errors onto the apperr taxonomy so
// handlers and the loader never inspect driver errors directly.
package storeerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/saasgate/internal/app/system/apperr"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
)

// Wrap annotates err with op and classifies it:
// no documents → ErrNotFound, duplicate key → ErrConflict, network or
// timeout → ErrNetwork. Other errors are wrapped unchanged.
func Wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case wafflemongo.IsDup(err):
		return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
	case IsUnavailable(err):
		return fmt.Errorf("%s: %v: %w", op, err, apperr.ErrNetwork)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsUnavailable reports whether err means the database could not be reached
// in time.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}
