package consultation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIfEmpty deletes the consultation only when no observation links to
	// it, in a single statement. It reports whether a row was deleted.
	DeleteIfEmpty(ctx context.Context, id uuid.UUID) (bool, error)
	// List orders by date then creation time, newest first.
	List(ctx context.Context, f Filter) ([]*Consultation, error)
}
