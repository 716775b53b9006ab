package domain

import "errors"

// Sentinel errors for the domain layer. The session preconditions carry the
// exact message shown to the user at the point of the attempted action.
var (
	ErrNotFound = errors.New("domain: not found")
	ErrConflict = errors.New("domain: conflict")

	ErrNotSignedIn   = errors.New("not signed in")
	ErrLoading       = errors.New("tasks are still loading")
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidDay    = errors.New("invalid weekday")
)
