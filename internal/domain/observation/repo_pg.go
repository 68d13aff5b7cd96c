package observation

import (
	"context"

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
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
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

const observationCols = `o.id, o.user_id, o.patient_id, o.consultation_id, o.date,
	o.type_observation, o.contenu, o.age_patient_jours, o.created_at, o.updated_at,
	p.id, p.nom, p.prenom, p.date_naissance, p.secteur`

const observationFrom = `observations o LEFT JOIN patients p ON p.id = o.patient_id`

func scanObservation(row pgx.Row) (*Observation, error) {
	var o Observation
	var pid *uuid.UUID
	var nom, prenom *string
	var ps patient.Summary
	err := row.Scan(&o.ID, &o.UserID, &o.PatientID, &o.ConsultationID, &o.Date,
		&o.TypeObservation, &o.Contenu, &o.AgePatientJours, &o.CreatedAt, &o.UpdatedAt,
		&pid, &nom, &prenom, &ps.DateNaissance, &ps.Secteur)
	if err != nil {
		return nil, err
	}
	if pid != nil {
		ps.ID = *pid
		ps.Nom, ps.Prenom = deref(nom), deref(prenom)
		o.Patient = &ps
	}
	return &o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const insertObservation = `
	INSERT INTO observations (id, user_id, patient_id, consultation_id, date,
		type_observation, contenu, age_patient_jours)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	RETURNING created_at, updated_at`

func insertArgs(o *Observation) []interface{} {
	return []interface{}{o.ID, o.UserID, o.PatientID, o.ConsultationID, o.Date,
		o.TypeObservation, o.Contenu, o.AgePatientJours}
}

func (r *repoPG) Create(ctx context.Context, o *Observation) error {
	o.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, insertObservation, insertArgs(o)...).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *repoPG) CreateBulk(ctx context.Context, items []*Observation) error {
	if len(items) == 0 {
		return nil
	}
	return db.RunInTx(ctx, r.pool, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		for _, o := range items {
			o.ID = uuid.New()
			batch.Queue(insertObservation, insertArgs(o)...)
		}
		br := r.conn(ctx).SendBatch(ctx, batch)
		for _, o := range items {
			if err := br.QueryRow().Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
				br.Close()
				return err
			}
		}
		return br.Close()
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Observation, error) {
	return scanObservation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+observationCols+` FROM `+observationFrom+` WHERE o.id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *Observation) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE observations SET patient_id=$2, consultation_id=$3, date=$4,
			type_observation=$5, contenu=$6, age_patient_jours=$7, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.PatientID, o.ConsultationID, o.Date, o.TypeObservation, o.Contenu, o.AgePatientJours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM observations WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Observation, error) {
	q := db.NewQuery(observationFrom, observationCols).
		WhereIf(f.PatientID != nil, "o.patient_id = ?", f.PatientID).
		WhereIf(f.ConsultationID != nil, "o.consultation_id = ?", f.ConsultationID).
		WhereIf(f.Date.Valid(), "o.date = ?", f.Date).
		OrderBy("o.date DESC, o.created_at DESC")

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

func (r *repoPG) CountByConsultation(ctx context.Context, consultationID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM observations WHERE consultation_id = $1`, consultationID).Scan(&n)
	return n, err
}
