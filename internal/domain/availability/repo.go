package availability

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists availability windows.
type Repository interface {
	Create(ctx context.Context, w *Window) error
	GetByID(ctx context.Context, id uuid.UUID) (*Window, error)
	Update(ctx context.Context, w *Window) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDoctor returns all windows for a doctor ordered by weekday
	// then start time.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error)
	// ListByDoctorWeekday returns the windows for one doctor on one weekday.
	ListByDoctorWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]*Window, error)
}
