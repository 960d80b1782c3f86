package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error classes the repositories translate into domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
