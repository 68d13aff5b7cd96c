package todo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*Todo, error)
	Update(ctx context.Context, t *Todo) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by urgency, then due date (undated last), then newest first.
	List(ctx context.Context, f Filter) ([]*Todo, error)
	// SetCompleted records completion; a nil at clears completed_at.
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool, at *time.Time) error
}
