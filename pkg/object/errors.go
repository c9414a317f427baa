package object

import "errors"

var (
	// ErrNotFound is returned when no backing file exists for a hash.
	ErrNotFound = errors.New("object not found")

	// ErrWriteInProgress is returned when a write handle cannot be
	// acquired because another writer holds the lock for the same hash.
	ErrWriteInProgress = errors.New("object write already in progress")

	// ErrCorrupt is returned when stored bytes cannot satisfy their own
	// declared structure: a length prefix over the limit, or a declared
	// count that runs past the end of the file.
	ErrCorrupt = errors.New("corrupt object")
)
