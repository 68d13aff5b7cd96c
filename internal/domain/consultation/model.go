package consultation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dossiers/dossiers/internal/domain"
)

// Consultation maps to the consultations table: a dated clinic session or
// meeting that observations can be attached to.
type Consultation struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	UserID    *string     `db:"user_id" json:"user_id,omitempty"`
	Date      domain.Date `db:"date" json:"date"`
	Type      string      `db:"type" json:"type"`
	Titre     *string     `db:"titre" json:"titre,omitempty"`
	Tags      *string     `db:"tags" json:"tags,omitempty"`
	Notes     *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// DisplayTitle is the title, or "Consultation du DD/MM/YYYY" when untitled.
func (c *Consultation) DisplayTitle() string {
	if c.Titre != nil && strings.TrimSpace(*c.Titre) != "" {
		return *c.Titre
	}
	return DefaultTitle(c.Date)
}

func DefaultTitle(d domain.Date) string {
	return "Consultation du " + d.FR()
}

func (c *Consultation) TagList() string {
	if c.Tags == nil {
		return ""
	}
	return *c.Tags
}

// Filter narrows List. A zero Date does not filter.
type Filter struct {
	Date domain.Date
}
