package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. An empty constraint name matches any unique violation; a named
// constraint matches only that one, which is how duplicate emails map to
// domain.ErrEmailExists without swallowing other conflicts.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	if string(pqErr.Code) != pqUniqueViolation {
		return false
	}

	if constraint == "" {
		return true
	}

	return pqErr.Constraint == constraint
}
