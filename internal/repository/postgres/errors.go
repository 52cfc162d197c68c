package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrCode extracts the SQLSTATE code from a pgconn error chain.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique violation (23505), raised here by the
// (document_id, version_number) backstop and the one-active-workflow index.
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err) == "23505"
}

// IsPgNoRowsError reports that a query matched nothing.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a foreign key violation (23503), e.g. a
// version or workflow insert referencing a missing document.
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err) == "23503"
}
