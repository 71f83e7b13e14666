package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDumpExtractsPgxFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "ux_users_username",
		TableName:      "users",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("insert user: %w", pgErr), "username already taken")

	d := Dump(err)
	assert.Equal(t, CodeConflict, d.Code)
	assert.Equal(t, "23505", d.PGCode)
	assert.Equal(t, "ux_users_username", d.PGConstraint)
	assert.Equal(t, "users", d.PGTable)
	assert.Len(t, d.Chain, 3)
}

func TestDumpExtractsLibPQFields(t *testing.T) {
	err := fmt.Errorf("update book: %w", &pq.Error{Code: "23514", Constraint: "chk_books_quantity", Table: "books"})

	d := Dump(err)
	assert.Equal(t, "23514", d.PGCode)
	assert.Equal(t, "chk_books_quantity", d.PGConstraint)
}

func TestDumpFlagsTimeouts(t *testing.T) {
	err := Wrap(CodeOperationFailed, context.DeadlineExceeded, "add item")

	d := Dump(err)
	assert.True(t, d.Timeout)
	assert.False(t, d.Retryable)
	assert.Equal(t, ErrorDump{}, Dump(nil))
}
