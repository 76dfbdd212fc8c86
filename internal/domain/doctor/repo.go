package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no doctor exists for the given id.
var ErrNotFound = errors.New("doctor not found")

// Repository persists doctor directory records.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search filters by the supported params (specialization, active)
	// and returns a page plus the unpaged total.
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)
}
