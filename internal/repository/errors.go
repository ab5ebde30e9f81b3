// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers to
// distinguish between failure scenarios without inspecting driver
// errors.  ErrSeatConflict in particular signals that a guarded seat
// decrement matched zero documents because the inventory changed
// between read and write.
package repository

import "errors"

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering with an email that is
// already taken (unique index violation on users.email).
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert or update violates a unique
// index (e.g. flight number, promo code).
var ErrDuplicate = errors.New("duplicate key")

// ErrSeatConflict is returned when a conditional seat-count update
// matched no document: the seats were consumed or restored concurrently
// and the caller should re-read and retry or compensate.
var ErrSeatConflict = errors.New("seat count changed concurrently")

// ErrConflict is returned when a delete or update cannot proceed due to
// dependent records, such as deleting a flight that still has
// non-cancelled bookings.
var ErrConflict = errors.New("conflict")
