package infrastructure

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrSchemaNotProvisioned  = errors.New("required table or relation is missing; run database provisioning before serving traffic")
	ErrTransientServiceError = errors.New("storage service unavailable")
)

// Postgres error codes used to pick between the primary and degraded query
// strategies. Selecting behavior off these codes instead of error message text
// keeps the fallback decision stable across server versions and locales.
const (
	pgUniqueViolation   = "23505"
	pgUndefinedTable    = "42P01"
	pgUndefinedColumn   = "42703"
	pgUndefinedFunction = "42883"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// the signal that a concurrent writer won a find-or-create race.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsUndefinedTable reports whether the referenced table does not exist.
func IsUndefinedTable(err error) bool {
	return pgCode(err) == pgUndefinedTable
}

// IsUndefinedFunction reports whether a stored procedure is absent, which
// routes find-or-create onto its client-side fallback.
func IsUndefinedFunction(err error) bool {
	return pgCode(err) == pgUndefinedFunction
}

// IsMissingRelation reports whether a join target (table or column) is
// unavailable. Callers degrade to separate queries with an in-memory join.
func IsMissingRelation(err error) bool {
	code := pgCode(err)
	return code == pgUndefinedTable || code == pgUndefinedColumn
}
