package availability

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockWindowRepo struct {
	windows map[uuid.UUID]*Window
}

func newMockWindowRepo() *mockWindowRepo {
	return &mockWindowRepo{windows: make(map[uuid.UUID]*Window)}
}

func (m *mockWindowRepo) Create(_ context.Context, w *Window) error {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = time.Now()
	m.windows[w.ID] = w
	return nil
}

func (m *mockWindowRepo) GetByID(_ context.Context, id uuid.UUID) (*Window, error) {
	w, ok := m.windows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (m *mockWindowRepo) Update(_ context.Context, w *Window) error {
	if _, ok := m.windows[w.ID]; !ok {
		return ErrNotFound
	}
	m.windows[w.ID] = w
	return nil
}

func (m *mockWindowRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.windows[id]; !ok {
		return ErrNotFound
	}
	delete(m.windows, id)
	return nil
}

func (m *mockWindowRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*Window, error) {
	var result []*Window
	for _, w := range m.windows {
		if w.DoctorID == doctorID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Weekday != result[j].Weekday {
			return result[i].Weekday < result[j].Weekday
		}
		return result[i].StartMinute < result[j].StartMinute
	})
	return result, nil
}

func (m *mockWindowRepo) ListByDoctorWeekday(_ context.Context, doctorID uuid.UUID, weekday int) ([]*Window, error) {
	var result []*Window
	for _, w := range m.windows {
		if w.DoctorID == doctorID && int(w.Weekday) == weekday {
			result = append(result, w)
		}
	}
	return result, nil
}

func TestCreateWindow(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	w := validWindow()
	if err := svc.CreateWindow(context.Background(), w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
}

func TestCreateWindow_Invalid(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	w := validWindow()
	w.StartMinute = 600
	w.EndMinute = 540
	if err := svc.CreateWindow(context.Background(), w); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

func TestCreateWindow_RejectsOverlap(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	doctorID := uuid.New()

	first := validWindow()
	first.DoctorID = doctorID
	if err := svc.CreateWindow(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := validWindow()
	second.DoctorID = doctorID
	second.StartMinute = 9*60 + 30
	second.EndMinute = 10*60 + 30
	if err := svc.CreateWindow(context.Background(), second); !errors.Is(err, ErrWindowOverlap) {
		t.Errorf("expected ErrWindowOverlap, got %v", err)
	}
}

func TestCreateWindow_AdjacentWindowsAllowed(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	doctorID := uuid.New()

	first := validWindow()
	first.DoctorID = doctorID
	svc.CreateWindow(context.Background(), first)

	second := validWindow()
	second.DoctorID = doctorID
	second.StartMinute = 10 * 60
	second.EndMinute = 11 * 60
	if err := svc.CreateWindow(context.Background(), second); err != nil {
		t.Errorf("adjacent window should be allowed, got %v", err)
	}
}

func TestCreateWindow_SameTimesDifferentWeekday(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	doctorID := uuid.New()

	first := validWindow()
	first.DoctorID = doctorID
	svc.CreateWindow(context.Background(), first)

	second := validWindow()
	second.DoctorID = doctorID
	second.Weekday = time.Tuesday
	if err := svc.CreateWindow(context.Background(), second); err != nil {
		t.Errorf("same times on another weekday should be allowed, got %v", err)
	}
}

func TestCreateWindow_SameTimesDifferentDoctor(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	first := validWindow()
	svc.CreateWindow(context.Background(), first)

	second := validWindow()
	if err := svc.CreateWindow(context.Background(), second); err != nil {
		t.Errorf("same times for another doctor should be allowed, got %v", err)
	}
}

func TestUpdateWindow_ExcludesSelfFromOverlapCheck(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	w := validWindow()
	svc.CreateWindow(context.Background(), w)

	w.EndMinute = 10*60 + 30
	if err := svc.UpdateWindow(context.Background(), w); err != nil {
		t.Errorf("update overlapping only itself should succeed, got %v", err)
	}
}

func TestUpdateWindow_RejectsOverlapWithOther(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	doctorID := uuid.New()

	first := validWindow()
	first.DoctorID = doctorID
	svc.CreateWindow(context.Background(), first)

	second := validWindow()
	second.DoctorID = doctorID
	second.StartMinute = 10 * 60
	second.EndMinute = 11 * 60
	svc.CreateWindow(context.Background(), second)

	second.StartMinute = 9*60 + 30
	if err := svc.UpdateWindow(context.Background(), second); !errors.Is(err, ErrWindowOverlap) {
		t.Errorf("expected ErrWindowOverlap, got %v", err)
	}
}

func TestDeleteWindow(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	w := validWindow()
	svc.CreateWindow(context.Background(), w)

	if err := svc.DeleteWindow(context.Background(), w.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetWindow(context.Background(), w.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
}

func TestListByDoctor_Ordering(t *testing.T) {
	svc := NewService(newMockWindowRepo())
	doctorID := uuid.New()

	afternoon := validWindow()
	afternoon.DoctorID = doctorID
	afternoon.StartMinute = 14 * 60
	afternoon.EndMinute = 16 * 60
	svc.CreateWindow(context.Background(), afternoon)

	morning := validWindow()
	morning.DoctorID = doctorID
	svc.CreateWindow(context.Background(), morning)

	sunday := validWindow()
	sunday.DoctorID = doctorID
	sunday.Weekday = time.Sunday
	svc.CreateWindow(context.Background(), sunday)

	items, err := svc.ListByDoctor(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(items))
	}
	if items[0].Weekday != time.Sunday {
		t.Errorf("expected Sunday first, got %v", items[0].Weekday)
	}
	if items[1].StartMinute != 9*60 || items[2].StartMinute != 14*60 {
		t.Error("expected Monday windows ordered by start time")
	}
}
