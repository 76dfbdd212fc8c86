package availability

import "errors"

var (
	// ErrInvalidWindow marks a window that fails structural validation.
	ErrInvalidWindow = errors.New("invalid availability window")

	// ErrWindowOverlap is returned when a window would intersect an
	// existing window for the same doctor and weekday.
	ErrWindowOverlap = errors.New("availability window overlaps an existing window")

	// ErrNotFound is returned when no window exists for the given id.
	ErrNotFound = errors.New("availability window not found")

	// ErrStorage wraps infrastructure failures from the windows store.
	// The request itself was well formed; callers may retry.
	ErrStorage = errors.New("availability storage unavailable")
)
