// Package realtime turns table changes into cache invalidations and client
// notifications. Changes arrive from services after a write and from
// Postgres triggers through LISTEN/NOTIFY.
package realtime

import (
	"context"
	"slices"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/platform/websocket"
)

// Channel is the NOTIFY channel the entity triggers publish on. The payload
// is the table name.
const Channel = "entity_changes"

var topics = map[string]string{
	domain.TablePatients:      "patients",
	domain.TableObservations:  "observations",
	domain.TableConsultations: "consultations",
	domain.TableTodos:         "todos",
	domain.TableWorkSessions:  "work-sessions",
}

// Topics are the client-facing names of every collection.
var Topics = []string{"patients", "observations", "consultations", "todos", "work-sessions"}

// TopicFor maps a table to its topic; unknown tables have none.
func TopicFor(table string) (string, bool) {
	t, ok := topics[table]
	return t, ok
}

// Fanout forwards each change to every notifier in order.
type Fanout []domain.Notifier

func (f Fanout) Changed(ctx context.Context, table string) {
	for _, n := range f {
		n.Changed(ctx, table)
	}
}

// Invalidator is the part of the hub the broadcaster needs.
type Invalidator interface {
	Invalidate(topic string)
}

var _ Invalidator = (*websocket.Hub)(nil)

// Broadcaster tells connected clients which collections went stale.
type Broadcaster struct {
	hub Invalidator
}

func NewBroadcaster(hub Invalidator) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) Changed(_ context.Context, table string) {
	var sent []string
	for _, t := range domain.AffectedTables(table) {
		topic, ok := TopicFor(t)
		if !ok || slices.Contains(sent, topic) {
			continue
		}
		b.hub.Invalidate(topic)
		sent = append(sent, topic)
	}
}
