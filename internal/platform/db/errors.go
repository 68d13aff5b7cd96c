package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Describe renders a store error the way it is shown to the user: the server
// message followed by its detail and hint when PostgreSQL supplied them.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err.Error()
	}
	var b strings.Builder
	b.WriteString(pgErr.Message)
	if pgErr.Detail != "" {
		b.WriteString(" (detail: ")
		b.WriteString(pgErr.Detail)
		b.WriteString(")")
	}
	if pgErr.Hint != "" {
		b.WriteString(" (hint: ")
		b.WriteString(pgErr.Hint)
		b.WriteString(")")
	}
	return b.String()
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsConstraintViolation reports integrity errors (SQLSTATE class 23) that the
// caller caused, as opposed to server faults.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}
