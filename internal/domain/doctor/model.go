package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is a bookable practitioner in the clinic directory.
type Doctor struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	Specialization  string    `json:"specialization"`
	ExperienceYears int       `json:"experience_years"`
	ConsultationFee float64   `json:"consultation_fee"`
	LicenseNumber   string    `json:"license_number"`
	Active          *bool     `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
