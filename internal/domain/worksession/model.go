package worksession

import (
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
)

// WorkSession batches todos worked through together, e.g. an afternoon of
// letters or phone calls.
type WorkSession struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	UserID      *string     `db:"user_id" json:"user_id,omitempty"`
	Name        string      `db:"name" json:"name"`
	Date        domain.Date `db:"date" json:"date"`
	Description *string     `db:"description" json:"description,omitempty"`
	Tags        *string     `db:"tags" json:"tags,omitempty"`
	Completed   bool        `db:"completed" json:"completed"`
	CompletedAt *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

type Filter struct {
	Completed *bool
}
