package scheduling

import "errors"

// Booking and lifecycle failures are sentinel errors so callers can
// branch with errors.Is. Wrapped messages carry the doctor, range and
// status context needed to decide on a retry.
var (
	// ErrInvalidRange marks a malformed or inverted time range. Caller
	// error, not retryable.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrSlotUnavailable means the requested range is not free. The
	// caller should re-fetch slots and pick another; the engine never
	// retries on its behalf.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrInvalidTransition marks an illegal state machine edge.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentModification means the stored status no longer
	// matched the expected one. Safe to retry after re-reading state.
	ErrConcurrentModification = errors.New("appointment modified concurrently")

	// ErrStorageUnavailable wraps persistence failures. Retryable
	// infrastructure error; never swallowed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound is returned when no appointment exists for the id.
	ErrNotFound = errors.New("appointment not found")
)
