package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	windows Repository
}

func NewService(windows Repository) *Service {
	return &Service{windows: windows}
}

// CreateWindow validates the window and rejects any overlap with the
// doctor's existing windows on the same weekday.
func (s *Service) CreateWindow(ctx context.Context, w *Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, w, uuid.Nil); err != nil {
		return err
	}
	return s.windows.Create(ctx, w)
}

func (s *Service) GetWindow(ctx context.Context, id uuid.UUID) (*Window, error) {
	return s.windows.GetByID(ctx, id)
}

func (s *Service) UpdateWindow(ctx context.Context, w *Window) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := s.checkOverlap(ctx, w, w.ID); err != nil {
		return err
	}
	return s.windows.Update(ctx, w)
}

func (s *Service) DeleteWindow(ctx context.Context, id uuid.UUID) error {
	return s.windows.Delete(ctx, id)
}

// ListByDoctor returns the doctor's windows ordered by weekday then start.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Window, error) {
	return s.windows.ListByDoctor(ctx, doctorID)
}

// checkOverlap rejects w if it intersects another window for the same
// doctor and weekday. exclude skips the window being updated.
func (s *Service) checkOverlap(ctx context.Context, w *Window, exclude uuid.UUID) error {
	existing, err := s.windows.ListByDoctorWeekday(ctx, w.DoctorID, int(w.Weekday))
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == exclude {
			continue
		}
		if w.Overlaps(other) {
			return fmt.Errorf("%w: %s-%s conflicts with %s-%s", ErrWindowOverlap,
				FormatClock(w.StartMinute), FormatClock(w.EndMinute),
				FormatClock(other.StartMinute), FormatClock(other.EndMinute))
		}
	}
	return nil
}
