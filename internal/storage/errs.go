package storage

import "errors"

// Sentinel errors for the error kinds the storage layer can raise.
// Callers should use errors.Is against these rather than matching
// error strings.
var (
	// ErrCapacity means an insertion or serialization would exceed a
	// page's fixed size.
	ErrCapacity = errors.New("storage: capacity exceeded")

	// ErrIndex means a row or entry id was out of range, negative, or
	// already tombstoned.
	ErrIndex = errors.New("storage: invalid row or entry id")

	// ErrUnsupported means the operation is not valid for the page's
	// variant (e.g. delete on an internal page).
	ErrUnsupported = errors.New("storage: unsupported for this page variant")

	// ErrIO wraps an underlying file operation failure.
	ErrIO = errors.New("storage: io failure")
)
