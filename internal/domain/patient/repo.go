package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns every patient ordered by nom then prenom.
	List(ctx context.Context) ([]*Patient, error)
	SaveSummary(ctx context.Context, id uuid.UUID, summary string, at time.Time) error
	CreateMailImport(ctx context.Context, m *MailImport) error
}
