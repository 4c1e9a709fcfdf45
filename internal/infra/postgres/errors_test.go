package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSQLStateMatching(t *testing.T) {
	missing := fmt.Errorf("count questions: %w", &pgconn.PgError{Code: codeUndefinedTable})
	dup := &pgconn.PgError{Code: codeUniqueViolation}

	assert.True(t, isUndefinedTable(missing))
	assert.False(t, isUniqueViolation(missing))
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUndefinedTable(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}
