package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docbook/docbook/internal/domain/availability"
)

// Repository persists appointments. Reserve and UpdateStatus are the
// only writers of appointment state.
type Repository interface {
	// Reserve atomically re-verifies that no non-cancelled appointment
	// overlaps a's range for the same doctor and date, then inserts a.
	// Concurrent attempts for overlapping ranges admit exactly one
	// winner; losers get ErrSlotUnavailable.
	Reserve(ctx context.Context, a *Appointment) error

	// UpdateStatus moves the appointment from expected to target in a
	// single conditional update. A status mismatch yields
	// ErrConcurrentModification; a missing row yields ErrNotFound.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, target Status) (*Appointment, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListByDoctorDateRange returns all appointments (any status) for
	// the doctor with date in [from, to], ordered by date then start.
	ListByDoctorDateRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)

	// Search filters by the supported params (doctor, patient, status,
	// from, to), ordered by date then start time ascending.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Appointment, int, error)
}

// AvailabilitySource supplies a doctor's recurring windows. Satisfied
// by the availability repository.
type AvailabilitySource interface {
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*availability.Window, error)
}
