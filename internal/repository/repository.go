package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by write paths so services can map them to
// client-facing failures.
var (
	// ErrDuplicate reports a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrCourseFull reports a capacity check failure inside the enroll
	// transaction.
	ErrCourseFull = errors.New("course capacity reached")
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
