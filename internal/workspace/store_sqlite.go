package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps workspaces in a local SQLite file, for single-user runs
// without a shared database.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace database: %w", err)
	}
	if err := sdb.Ping(); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("workspace database ping failed: %w", err)
	}
	_, err = sdb.Exec(`CREATE TABLE IF NOT EXISTS workspace_state (
		user_id    TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		sdb.Close()
		return nil, fmt.Errorf("create workspace_state: %w", err)
	}
	return &SQLiteStore{db: sdb}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context, userID string) (Workspace, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM workspace_state WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, nil
	}
	if err != nil {
		return Workspace{}, fmt.Errorf("load workspace: %w", err)
	}
	return Decode([]byte(raw)), nil
}

func (s *SQLiteStore) Save(ctx context.Context, userID string, w Workspace) error {
	raw, err := Encode(w)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workspace_state (user_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		userID, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	return nil
}
