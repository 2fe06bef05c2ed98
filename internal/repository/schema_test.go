package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/rDingyFourFour/handybob-sub000/internal/errors"
)

func TestSchemaVerifier_CachesSuccess(t *testing.T) {
	db, mock := newMock(t)
	cache, err := NewSchemaCache(4)
	require.NoError(t, err)
	v := &SchemaVerifier{DB: db, Cache: cache}

	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range CallOutcomeColumns {
		rows.AddRow(c)
	}
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("calls", sqlmock.AnyArg()).
		WillReturnRows(rows)

	require.NoError(t, v.VerifyCallOutcomeColumns(context.Background()))
	// second call must be served from the cache; sqlmock fails on an unexpected query
	require.NoError(t, v.VerifyCallOutcomeColumns(context.Background()))
	assert.True(t, cache.Verified("calls"))

	v.Invalidate("calls")
	assert.False(t, cache.Verified("calls"))
}

func TestSchemaVerifier_MissingColumns(t *testing.T) {
	db, mock := newMock(t)
	cache, err := NewSchemaCache(4)
	require.NoError(t, err)
	v := &SchemaVerifier{DB: db, Cache: cache}

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM information_schema.columns").
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("outcome_code"))
	}

	err = v.VerifyCallOutcomeColumns(context.Background())
	assert.Equal(t, appErrors.KindSchemaOutOfDate, appErrors.KindOf(err))
	assert.Contains(t, appErrors.Message(err), "outcome_notes")
	assert.False(t, cache.Verified("calls"))

	// failures are not memoized, so a migrated database is picked up
	err = v.VerifyCallOutcomeColumns(context.Background())
	assert.Error(t, err)
}

func TestSchemaVerifier_NilCache(t *testing.T) {
	db, mock := newMock(t)
	v := &SchemaVerifier{DB: db}
	rows := sqlmock.NewRows([]string{"column_name"})
	for _, c := range CallOutcomeColumns {
		rows.AddRow(c)
	}
	mock.ExpectQuery("FROM information_schema.columns").WillReturnRows(rows)
	assert.NoError(t, v.VerifyCallOutcomeColumns(context.Background()))
}

func TestClassifyPgError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want appErrors.Kind
	}{
		{"outcome check", &pq.Error{Code: "23514", Constraint: OutcomeConstraint}, appErrors.KindSchemaOutOfDate},
		{"other check", &pq.Error{Code: "23514", Constraint: "messages_channel_check"}, appErrors.KindPersistence},
		{"undefined column", &pq.Error{Code: "42703"}, appErrors.KindSchemaOutOfDate},
		{"undefined table", &pq.Error{Code: "42P01"}, appErrors.KindSchemaOutOfDate},
		{"unique violation", &pq.Error{Code: "23505"}, appErrors.KindPersistence},
		{"plain", errors.New("broken pipe"), appErrors.KindPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appErrors.KindOf(ClassifyPgError("op", tt.err)))
		})
	}
	assert.NoError(t, ClassifyPgError("op", nil))
}
