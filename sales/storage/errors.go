package storage

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/AntonStoeckl/synthetic-sales-generator/sales"
)

// sqlStateClassIntegrityConstraint is the SQLSTATE class for integrity constraint violations.
const sqlStateClassIntegrityConstraint = "23"

// classifyStoreError joins the driver error with ErrConstraintViolation or ErrStoreUnavailable.
func classifyStoreError(err error) error {
	if isConstraintViolation(err) {
		return errors.Join(sales.ErrConstraintViolation, err)
	}

	return errors.Join(sales.ErrStoreUnavailable, err)
}

func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, sqlStateClassIntegrityConstraint)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code.Class()) == sqlStateClassIntegrityConstraint
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// extended result codes carry the primary code in the low byte
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	return false
}
