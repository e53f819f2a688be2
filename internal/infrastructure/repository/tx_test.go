package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kevmuri/bookstore-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatePgError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want apperror.Kind
	}{
		{name: "serialization failure", code: "40001", want: apperror.KindTransient},
		{name: "deadlock detected", code: "40P01", want: apperror.KindTransient},
		{name: "lock not available", code: "55P03", want: apperror.KindTransient},
		{name: "unique violation", code: "23505", want: apperror.KindConflict},
		{name: "foreign key violation", code: "23503", want: apperror.KindConflict},
		{name: "check violation", code: "23514", want: apperror.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: tt.code, ConstraintName: "some_constraint"}
			err := translatePgError(fmt.Errorf("query failed: %w", pgErr))
			require.Error(t, err)
			assert.Equal(t, tt.want, apperror.KindOf(err))
		})
	}
}

func TestTranslatePgErrorPassesThroughForeignErrors(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, translatePgError(plain))

	unknown := &pgconn.PgError{Code: "42P01"} // undefined_table
	got := translatePgError(unknown)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(got))
}
