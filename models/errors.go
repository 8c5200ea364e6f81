package models

import (
	"github.com/cockroachdb/errors"
)

// Base errors, shared across all layers
var (
	BadParameterError = errors.New("bad parameter")

	NotFoundError = errors.New("not found")

	ConflictError = errors.New("duplicate value")
)

// Store layer taxonomy. Every repository method marks its error with exactly
// one of these so callers can decide retry vs. abort with errors.Is without
// losing the pgx cause.
var (
	ErrInsertionFailure = errors.New("insertion failure")
	ErrRetrievalFailure = errors.New("retrieval failure")
	ErrUpdateFailure    = errors.New("update failure")
	ErrDeletionFailure  = errors.New("deletion failure")
)

// Notification pipeline errors
var (
	// ErrNoSubscriptions means the client has no event subscriptions
	// registered at all. It is reported, not retried: the notification stays
	// in OPEN status and remains a candidate for a later re-drive.
	ErrNoSubscriptions = errors.New("no event subscriptions registered for client")

	ErrSigningFailure = errors.New("event payload signing failure")

	// ErrConfiguration is fatal and surfaced at construction time.
	ErrConfiguration = errors.New("invalid configuration")
)
