package domain

import "errors"

// Domain errors
var (
	// Auth errors
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrNotAuthenticated     = errors.New("not authenticated")

	// Booking errors
	ErrNoSelection    = errors.New("no tickets or rides selected")
	ErrMixedSelection = errors.New("cannot mix ride and ticket-tier selections")
	ErrBookingFailed  = errors.New("booking failed")

	// Self-healing errors: callers fall back instead of surfacing these
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrCorruptedSession   = errors.New("corrupted session record")
)
