// Package domain holds the pieces shared by every entity package: validation
// and not-found errors, their HTTP mapping, calendar dates and the change
// notifier services call after a successful write.
package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dossiers/dossiers/internal/platform/db"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalidf builds a ValidationError.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNotFound(err)
}

// HTTPError maps a service error to the response the client sees. Store errors
// keep their message, detail and hint verbatim.
func HTTPError(err error) *echo.HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case db.IsConstraintViolation(err):
		return echo.NewHTTPError(http.StatusConflict, db.Describe(err))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, db.Describe(err))
	}
}

// Table names as they appear in change notifications.
const (
	TablePatients      = "patients"
	TableObservations  = "observations"
	TableConsultations = "consultations"
	TableTodos         = "todos"
	TableWorkSessions  = "work_sessions"
)

// Tables lists every table that publishes changes.
var Tables = []string{TablePatients, TableObservations, TableConsultations, TableTodos, TableWorkSessions}

// embedders lists the tables whose rows are returned joined with rows of
// another table.
var embedders = map[string][]string{
	TablePatients: {TableObservations, TableTodos},
}

// AffectedTables returns table followed by the tables whose joined reads
// change when it does.
func AffectedTables(table string) []string {
	return append([]string{table}, embedders[table]...)
}

// Notifier is told which table changed after a write commits.
type Notifier interface {
	Changed(ctx context.Context, table string)
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, string) {}

// NopNotifier discards notifications.
var NopNotifier Notifier = nopNotifier{}
