package observation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *Observation) error
	// CreateBulk inserts all observations or none.
	CreateBulk(ctx context.Context, items []*Observation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Observation, error)
	Update(ctx context.Context, o *Observation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by date then creation time, newest first.
	List(ctx context.Context, f Filter) ([]*Observation, error)
	CountByConsultation(ctx context.Context, consultationID uuid.UUID) (int, error)
}
