package todo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dossiers/dossiers/internal/domain"
	"github.com/dossiers/dossiers/internal/domain/patient"
	"github.com/dossiers/dossiers/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const todoCols = `t.id, t.user_id, t.patient_id, t.observation_id, t.work_session_id,
	t.contenu, t.type_todo, t.urgence, t.date_echeance, t.tags, t.completed,
	t.completed_at, t.created_at, t.updated_at,
	p.id, p.nom, p.prenom, o.id, o.date, o.type_observation`

const todoFrom = `todos t
	LEFT JOIN patients p ON p.id = t.patient_id
	LEFT JOIN observations o ON o.id = t.observation_id`

const todoOrder = `CASE t.urgence WHEN 'critique' THEN 0 WHEN 'haute' THEN 1
	WHEN 'normale' THEN 2 WHEN 'basse' THEN 3 ELSE 4 END,
	t.date_echeance ASC NULLS LAST, t.created_at DESC`

func scanTodo(row pgx.Row) (*Todo, error) {
	var t Todo
	var pid, oid *uuid.UUID
	var nom, prenom, otype *string
	var odate domain.Date
	err := row.Scan(&t.ID, &t.UserID, &t.PatientID, &t.ObservationID, &t.WorkSessionID,
		&t.Contenu, &t.TypeTodo, &t.Urgence, &t.DateEcheance, &t.Tags, &t.Completed,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		&pid, &nom, &prenom, &oid, &odate, &otype)
	if err != nil {
		return nil, err
	}
	if pid != nil {
		t.Patient = &patient.Summary{ID: *pid, Nom: deref(nom), Prenom: deref(prenom)}
	}
	if oid != nil {
		t.Observation = &ObservationRef{ID: *oid, Date: odate, TypeObservation: deref(otype)}
	}
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *repoPG) Create(ctx context.Context, t *Todo) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO todos (id, user_id, patient_id, observation_id, work_session_id,
			contenu, type_todo, urgence, date_echeance, tags, completed, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.PatientID, t.ObservationID, t.WorkSessionID,
		t.Contenu, t.TypeTodo, t.Urgence, t.DateEcheance, t.Tags, t.Completed, t.CompletedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Todo, error) {
	return scanTodo(r.conn(ctx).QueryRow(ctx, `SELECT `+todoCols+` FROM `+todoFrom+` WHERE t.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *Todo) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE todos SET patient_id=$2, observation_id=$3, work_session_id=$4, contenu=$5,
			type_todo=$6, urgence=$7, date_echeance=$8, tags=$9, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.PatientID, t.ObservationID, t.WorkSessionID, t.Contenu,
		t.TypeTodo, t.Urgence, t.DateEcheance, t.Tags)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	return err
}

func (r *repoPG) SetCompleted(ctx context.Context, id uuid.UUID, completed bool, at *time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE todos SET completed=$2, completed_at=$3, updated_at=NOW() WHERE id = $1`,
		id, completed, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Todo, error) {
	q := db.NewQuery(todoFrom, todoCols).
		WhereIf(f.Completed != nil, "t.completed = ?", f.Completed).
		WhereIf(f.PatientID != nil, "t.patient_id = ?", f.PatientID).
		WhereIf(f.WorkSessionID != nil, "t.work_session_id = ?", f.WorkSessionID).
		OrderBy(todoOrder)

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
