package worksession

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, ws *WorkSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*WorkSession, error)
	Update(ctx context.Context, ws *WorkSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by date descending (undated last), then newest first.
	List(ctx context.Context, f Filter) ([]*WorkSession, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
}
