package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// minutesPerDay bounds window times. Windows never span midnight.
const minutesPerDay = 24 * 60

// Window is one recurring weekly availability window for a doctor.
// Times are minutes from midnight in the clinic's timezone.
type Window struct {
	ID          uuid.UUID    `json:"id"`
	DoctorID    uuid.UUID    `json:"doctor_id"`
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
	SlotMinutes int          `json:"slot_minutes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Validate checks the window's internal consistency.
func (w *Window) Validate() error {
	if w.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor_id is required", ErrInvalidWindow)
	}
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be 0 (Sunday) through 6 (Saturday)", ErrInvalidWindow)
	}
	if w.StartMinute < 0 || w.EndMinute > minutesPerDay {
		return fmt.Errorf("%w: window must lie within a single calendar day", ErrInvalidWindow)
	}
	if w.StartMinute >= w.EndMinute {
		return fmt.Errorf("%w: start must be before end", ErrInvalidWindow)
	}
	if w.SlotMinutes <= 0 {
		return fmt.Errorf("%w: slot_minutes must be positive", ErrInvalidWindow)
	}
	return nil
}

// Overlaps reports whether two windows on the same weekday intersect.
// Ranges are half-open: [a,b) and [c,d) overlap iff a < d and c < b.
func (w *Window) Overlaps(other *Window) bool {
	if w.Weekday != other.Weekday {
		return false
	}
	return w.StartMinute < other.EndMinute && other.StartMinute < w.EndMinute
}

// ParseClock converts an "HH:MM" string to minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight to an "HH:MM" string.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
