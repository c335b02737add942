package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNoFreeSlot means no slot of the requested class (or of any class,
	// for ReserveAny) could be won. Normal capacity outcome, not a failure.
	ErrNoFreeSlot = errors.New("no free slot")

	// ErrNoOpenSession means the plate has no OPEN session.
	ErrNoOpenSession = errors.New("no open session")

	// ErrDuplicateSession means an OPEN session for the plate already
	// exists; raised by the storage-level unique index when two entries race.
	ErrDuplicateSession = errors.New("open session already exists")
)
