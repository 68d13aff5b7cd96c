package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "boom"},
		{
			"message only",
			&pgconn.PgError{Message: "permission denied"},
			"permission denied",
		},
		{
			"detail and hint",
			fmt.Errorf("insert patient: %w", &pgconn.PgError{
				Message: "null value in column \"nom\"",
				Detail:  "Failing row contains (...)",
				Hint:    "Provide a name",
			}),
			"null value in column \"nom\" (detail: Failing row contains (...)) (hint: Provide a name)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)) {
		t.Error("expected wrapped ErrNoRows to be not found")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("unexpected not found")
	}
}

func TestIsConstraintViolation(t *testing.T) {
	if !IsConstraintViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected foreign key violation to be a constraint violation")
	}
	if IsConstraintViolation(&pgconn.PgError{Code: "42P01"}) {
		t.Error("undefined table is not a constraint violation")
	}
}
