package store

import "errors"

// Closed error taxonomy. Engines never swallow failures: every operation
// either succeeds or returns one of these (possibly wrapped) or a generic
// engine error the caller must surface.
var (
	// ErrStorageUnavailable means the host cannot provide a persistent
	// store at all. Fatal for the caller, retrying is pointless.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrUpgradeBlocked means another connection holds the schema upgrade
	// lock. Callers should back off and reopen.
	ErrUpgradeBlocked = errors.New("schema upgrade blocked by another connection")

	// ErrDuplicateKey is returned by Add when the primary key (or a unique
	// index declared in the registry) already holds the value.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrIndexNotFound flags a query against an index the registry does not
	// declare. This is a programming error, not a user-recoverable one.
	ErrIndexNotFound = errors.New("index not found")

	// ErrUnknownCollection flags an operation on a collection outside the
	// registry's declared set.
	ErrUnknownCollection = errors.New("unknown collection")
)
