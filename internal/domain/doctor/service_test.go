package doctor

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.doctors[id]; !ok {
		return ErrNotFound
	}
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	var result []*Doctor
	for _, d := range m.doctors {
		if spec, ok := params["specialization"]; ok && d.Specialization != spec {
			continue
		}
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, len(result), nil
}

func validDoctor() *Doctor {
	return &Doctor{
		FullName:        "Asha Rao",
		Specialization:  "cardiology",
		ExperienceYears: 12,
		ConsultationFee: 150,
		LicenseNumber:   "MD-44821",
	}
}

func TestCreateDoctor(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Active == nil || !*d.Active {
		t.Error("expected active to default to true")
	}
}

func TestCreateDoctor_FullNameRequired(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	d.FullName = ""
	if err := svc.CreateDoctor(context.Background(), d); err == nil {
		t.Error("expected error for missing full_name")
	}
}

func TestCreateDoctor_LicenseRequired(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	d.LicenseNumber = ""
	if err := svc.CreateDoctor(context.Background(), d); err == nil {
		t.Error("expected error for missing license_number")
	}
}

func TestCreateDoctor_NegativeExperience(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	d.ExperienceYears = -1
	if err := svc.CreateDoctor(context.Background(), d); err == nil {
		t.Error("expected error for negative experience_years")
	}
}

func TestCreateDoctor_NegativeFee(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	d.ConsultationFee = -10
	if err := svc.CreateDoctor(context.Background(), d); err == nil {
		t.Error("expected error for negative consultation_fee")
	}
}

func TestGetDoctor(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	svc.CreateDoctor(context.Background(), d)

	fetched, err := svc.GetDoctor(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.ID != d.ID {
		t.Error("unexpected ID mismatch")
	}
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	if _, err := svc.GetDoctor(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDoctor(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	svc.CreateDoctor(context.Background(), d)

	d.ConsultationFee = 200
	if err := svc.UpdateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteDoctor(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	d := validDoctor()
	svc.CreateDoctor(context.Background(), d)

	if err := svc.DeleteDoctor(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetDoctor(context.Background(), d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}
}

func TestSearchDoctors_SpecializationFilter(t *testing.T) {
	svc := NewService(newMockDoctorRepo())
	cardio := validDoctor()
	svc.CreateDoctor(context.Background(), cardio)

	derm := validDoctor()
	derm.FullName = "Ben Ortiz"
	derm.Specialization = "dermatology"
	derm.LicenseNumber = "MD-99120"
	svc.CreateDoctor(context.Background(), derm)

	items, total, err := svc.SearchDoctors(context.Background(), map[string]string{"specialization": "cardiology"}, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1, got %d", total)
	}
	if len(items) != 1 || items[0].Specialization != "cardiology" {
		t.Error("expected only the cardiology doctor")
	}
}
