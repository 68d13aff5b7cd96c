package patient

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dossiers/dossiers/internal/domain"
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

const patientCols = `id, user_id, nom, prenom, date_naissance, sexe, secteur,
	telephone, email, adresse, notes, resume_ia, resume_updated_at,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Nom, &p.Prenom, &p.DateNaissance, &p.Sexe, &p.Secteur,
		&p.Telephone, &p.Email, &p.Adresse, &p.Notes, &p.ResumeIA, &p.ResumeUpdatedAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, user_id, nom, prenom, date_naissance, sexe, secteur,
			telephone, email, adresse, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.UserID, p.Nom, p.Prenom, p.DateNaissance, p.Sexe, p.Secteur,
		p.Telephone, p.Email, p.Adresse, p.Notes).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET nom=$2, prenom=$3, date_naissance=$4, sexe=$5, secteur=$6,
			telephone=$7, email=$8, adresse=$9, notes=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Nom, p.Prenom, p.DateNaissance, p.Sexe, p.Secteur,
		p.Telephone, p.Email, p.Adresse, p.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY nom ASC, prenom ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) SaveSummary(ctx context.Context, id uuid.UUID, summary string, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET resume_ia=$2, resume_updated_at=$3, updated_at=NOW() WHERE id = $1`,
		id, summary, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) CreateMailImport(ctx context.Context, m *MailImport) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO mail_imports (id, user_id, patient_id, contenu_original, analyse_ia)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		m.ID, m.UserID, m.PatientID, m.ContenuOriginal, m.AnalyseIA).Scan(&m.CreatedAt)
}
