package postgres

import (
	"errors"

	"github.com/jackc/pgconn"
)

const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUndefinedTable(err error) bool {
	return hasCode(err, codeUndefinedTable)
}

func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}
