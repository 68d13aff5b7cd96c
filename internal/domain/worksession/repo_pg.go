package worksession

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

const sessionCols = `id, user_id, name, date, description, tags, completed, completed_at, created_at, updated_at`

func scanSession(row pgx.Row) (*WorkSession, error) {
	var ws WorkSession
	err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.Date, &ws.Description, &ws.Tags,
		&ws.Completed, &ws.CompletedAt, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *repoPG) Create(ctx context.Context, ws *WorkSession) error {
	ws.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO work_sessions (id, user_id, name, date, description, tags, completed)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		ws.ID, ws.UserID, ws.Name, ws.Date, ws.Description, ws.Tags, ws.Completed,
	).Scan(&ws.CreatedAt, &ws.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*WorkSession, error) {
	return scanSession(r.conn(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM work_sessions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, ws *WorkSession) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE work_sessions SET name=$2, date=$3, description=$4, tags=$5, updated_at=NOW()
		WHERE id = $1`,
		ws.ID, ws.Name, ws.Date, ws.Description, ws.Tags)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM work_sessions WHERE id = $1`, id)
	return err
}

func (r *repoPG) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE work_sessions SET completed=TRUE, completed_at=$2, updated_at=NOW() WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*WorkSession, error) {
	q := db.NewQuery("work_sessions", sessionCols).
		WhereIf(f.Completed != nil, "completed = ?", f.Completed).
		OrderBy("date DESC NULLS LAST, created_at DESC")

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*WorkSession
	for rows.Next() {
		ws, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ws)
	}
	return items, rows.Err()
}
