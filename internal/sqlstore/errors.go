package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/ariefcatur/booknest/internal/library"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func fail(op string, err error) error {
	return &library.PersistenceError{Op: op, Err: err}
}

// readErr maps the error of a single-row read.
func readErr(entity, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &library.NotFoundError{Entity: entity}
	}
	return fail(op, err)
}

// writeErr maps constraint violations of an insert or update.
func writeErr(op string, err error, uniqueMsg, refMsg string) error {
	switch {
	case isUniqueViolation(err) && uniqueMsg != "":
		return &library.ConflictError{Details: uniqueMsg}
	case isForeignKeyViolation(err) && refMsg != "":
		return &library.ValidationError{Details: refMsg}
	}
	return fail(op, err)
}

// deleteErr maps a restrict violation of a delete to a conflict.
func deleteErr(op string, err error, refMsg string) error {
	if isForeignKeyViolation(err) {
		return &library.ConflictError{Details: refMsg}
	}
	return fail(op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
