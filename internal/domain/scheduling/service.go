package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docbook/docbook/internal/domain/availability"
	"github.com/docbook/docbook/internal/platform/db"
)

// maxSlotRangeDays bounds a single slot generation request so one call
// cannot expand an unbounded horizon.
const maxSlotRangeDays = 92

// TxRunner executes fn inside a storage transaction. Tests substitute
// a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PoolTxRunner is the production TxRunner backed by a pgx pool.
func PoolTxRunner(pool *pgxpool.Pool) TxRunner {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}
}

// Notifier is invoked after a successful booking or transition. It is
// fire and forget: failures never roll back the state change.
type Notifier func(ctx context.Context, event string, a *Appointment)

type Service struct {
	appointments Repository
	windows      AvailabilitySource
	tx           TxRunner
	notify       Notifier
	loc          *time.Location
	autoConfirm  bool
	now          func() time.Time
}

// NewService wires the booking engine. loc is the clinic timezone used
// to judge whether an appointment has ended. When autoConfirm is set,
// staff-initiated bookings skip PENDING and start CONFIRMED.
func NewService(appts Repository, windows AvailabilitySource, tx TxRunner, loc *time.Location, autoConfirm bool) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		appointments: appts,
		windows:      windows,
		tx:           tx,
		loc:          loc,
		autoConfirm:  autoConfirm,
		now:          time.Now,
	}
}

// SetNotifier installs the post-transition notification hook.
func (s *Service) SetNotifier(n Notifier) { s.notify = n }

// BookAppointment validates the request against the doctor's free
// slots and atomically reserves the range. Validation order: inverted
// range first, then slot containment, then the serialized
// check-and-reserve. Exactly one of any set of concurrent overlapping
// requests succeeds.
func (s *Service) BookAppointment(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, startMinute, endMinute int, staffInitiated bool) (*Appointment, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidRange)
	}
	if endMinute <= startMinute {
		return nil, fmt.Errorf("%w: end %s must be after start %s", ErrInvalidRange,
			availability.FormatClock(endMinute), availability.FormatClock(startMinute))
	}
	if startMinute < 0 || endMinute > 24*60 {
		return nil, fmt.Errorf("%w: range must lie within a single day", ErrInvalidRange)
	}

	free, err := s.freeSlots(ctx, doctorID, date, date)
	if err != nil {
		return nil, err
	}
	if !containedInFreeSlot(free, startMinute, endMinute) {
		return nil, fmt.Errorf("%w: doctor %s on %s %s-%s is not an open slot", ErrSlotUnavailable,
			doctorID, date.Format("2006-01-02"),
			availability.FormatClock(startMinute), availability.FormatClock(endMinute))
	}

	status := StatusPending
	if staffInitiated && s.autoConfirm {
		status = StatusConfirmed
	}
	a := &Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		Date:        truncateDay(date),
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Status:      status,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		return s.appointments.Reserve(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify(ctx, "booked", a)
	}
	return a, nil
}

// TransitionAppointment applies one state machine edge with an
// expected-current-status precondition. The caller owns retry policy;
// on ErrConcurrentModification it should re-read and decide.
func (s *Service) TransitionAppointment(ctx context.Context, id uuid.UUID, target, expected Status) (*Appointment, error) {
	if !ValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}
	if !ValidStatus(expected) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, expected)
	}
	if !CanTransition(expected, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expected, target)
	}

	if target == StatusCompleted {
		current, err := s.appointments.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.now().Before(current.EndsAt(s.loc)) {
			return nil, fmt.Errorf("%w: cannot complete before the appointment ends at %s",
				ErrInvalidTransition, current.EndsAt(s.loc).Format(time.RFC3339))
		}
	}

	a, err := s.appointments.UpdateStatus(ctx, id, expected, target)
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		s.notify(ctx, transitionEvent(target), a)
	}
	return a, nil
}

// GenerateSlots expands the doctor's availability into free dated
// slots for [from, to] inclusive. A day without availability yields
// zero slots; that is not an error.
func (s *Service) GenerateSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]TimeSlot, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: from and to are required", ErrInvalidRange)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to %s is before from %s", ErrInvalidRange,
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	if to.Sub(from) > maxSlotRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: range exceeds %d days", ErrInvalidRange, maxSlotRangeDays)
	}
	return s.freeSlots(ctx, doctorID, from, to)
}

// ListAppointments is the read-only query surface. params: doctor,
// patient, status, from, to.
func (s *Service) ListAppointments(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error) {
	if st, ok := params["status"]; ok && !ValidStatus(Status(st)) {
		return nil, 0, fmt.Errorf("invalid status %q", st)
	}
	// Date filters reach the repo as SQL arguments; reject malformed
	// values here instead of letting them fail inside the database.
	for _, k := range []string{"from", "to"} {
		if v, ok := params[k]; ok {
			if _, err := time.Parse(dateLayout, v); err != nil {
				return nil, 0, fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", k, v)
			}
		}
	}
	return s.appointments.Search(ctx, params, limit, offset)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) freeSlots(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]TimeSlot, error) {
	windows, err := s.windows.ListByDoctor(ctx, doctorID)
	if err != nil {
		// The window source is a different store; any failure here is an
		// infrastructure fault, never a caller error.
		if errors.Is(err, ErrStorageUnavailable) {
			return nil, err
		}
		return nil, storageErr(err)
	}
	appts, err := s.appointments.ListByDoctorDateRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	return ExpandSlots(doctorID, windows, appts, from, to), nil
}

func containedInFreeSlot(slots []TimeSlot, start, end int) bool {
	for _, sl := range slots {
		if sl.StartMinute <= start && end <= sl.EndMinute {
			return true
		}
	}
	return false
}

func transitionEvent(target Status) string {
	switch target {
	case StatusConfirmed:
		return "confirmed"
	case StatusCancelled:
		return "cancelled"
	case StatusCompleted:
		return "completed"
	}
	return "updated"
}
