package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/docflow/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The sqlite tests cover behavior; this one pins the exact statement sent to
// PostgreSQL, where the ON CONFLICT upsert is what makes issuance atomic.
func setupSqlmockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormNumberSequenceRepository_Next_UpsertStatement(t *testing.T) {
	db, mock := setupSqlmockDB(t)
	repo := NewGormNumberSequenceRepository(db)

	tenantID := uuid.New()
	period := document.Period{Year: 2026, Month: 8}

	mock.ExpectQuery(`(?s)INSERT INTO number_sequences.+ON CONFLICT \(tenant_id, doc_type, period\).+DO UPDATE SET next_value = number_sequences\.next_value \+ 1.+RETURNING next_value`).
		WithArgs(tenantID, "INVOICE", "2026-08", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"next_value"}).AddRow(int64(7)))

	next, err := repo.Next(context.Background(), tenantID, document.DocumentTypeInvoice, period)
	require.NoError(t, err)
	assert.Equal(t, int64(7), next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormNumberSequenceRepository_Next_PropagatesError(t *testing.T) {
	db, mock := setupSqlmockDB(t)
	repo := NewGormNumberSequenceRepository(db)

	tenantID := uuid.New()
	mock.ExpectQuery(`INSERT INTO number_sequences`).
		WillReturnError(gorm.ErrInvalidTransaction)

	_, err := repo.Next(context.Background(), tenantID, document.DocumentTypeQuote, document.Period{Year: 2026, Month: 8})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
