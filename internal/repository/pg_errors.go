package repository

import (
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation PostgreSQL 23505 unique_violation
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
