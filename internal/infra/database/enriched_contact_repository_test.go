package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agencyos/enrich-api/internal/entity"
)

func TestEnrichedContactUpsert(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	sqlMock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enriched_contacts")).
		WithArgs("jane@acme.com", "Jane", "Doe", "Acme", nil, "mock").
		WillReturnRows(sqlmock.NewRows([]string{"id", "lookup_count", "created_at", "updated_at"}).
			AddRow("7", 2, now, now))

	repo := NewEnrichedContactRepository(db)
	contact := &entity.EnrichedContact{
		Email:       "jane@acme.com",
		FirstName:   "Jane",
		LastName:    "Doe",
		CompanyName: "Acme",
		Provider:    "mock",
	}

	require.NoError(t, repo.Upsert(context.Background(), contact))
	assert.Equal(t, "7", contact.ID)
	assert.Equal(t, 2, contact.LookupCount)
	assert.Equal(t, now, contact.UpdatedAt)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestEnrichedContactUpsertError(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectQuery("INSERT INTO enriched_contacts").WillReturnError(errors.New("connection reset"))

	err = NewEnrichedContactRepository(db).Upsert(context.Background(), &entity.EnrichedContact{Email: "x@y.z", Provider: "mock"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestEnsureSchema(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlMock.ExpectExec("CREATE TABLE IF NOT EXISTS enriched_contacts").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewEnrichedContactRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestPruneStale(t *testing.T) {
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sqlMock.ExpectExec(regexp.QuoteMeta("DELETE FROM enriched_contacts WHERE updated_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewEnrichedContactRepository(db).PruneStale(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
