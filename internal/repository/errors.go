package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrNotFound is returned by writes that matched no row
var ErrNotFound = errors.New("record not found")

const uniqueViolation = "23505"

// ConflictError reports a unique constraint violation
type ConflictError struct {
	Table      string
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

// Column returns the column named by a default Postgres constraint name (<table>_<column>_key)
func (e *ConflictError) Column() string {
	col := strings.TrimPrefix(e.Constraint, e.Table+"_")
	return strings.TrimSuffix(col, "_key")
}

// mapError converts driver errors the service layer needs to distinguish
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &ConflictError{Table: pqErr.Table, Constraint: pqErr.Constraint}
	}
	return err
}

func requireAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
