package persistence

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNumberSequenceRepository implements document.NumberSequenceRepository
// with a per-key atomic counter row.
type GormNumberSequenceRepository struct {
	db *gorm.DB
}

// NewGormNumberSequenceRepository creates a new GormNumberSequenceRepository
func NewGormNumberSequenceRepository(db *gorm.DB) *GormNumberSequenceRepository {
	return &GormNumberSequenceRepository{db: db}
}

// Next increments and returns the counter for the key as one atomic statement.
// The upsert serializes concurrent issuance on the row itself; there is no
// read-then-write window. Works on both PostgreSQL and SQLite.
func (r *GormNumberSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, docType document.DocumentType, period document.Period) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO number_sequences (tenant_id, doc_type, period, next_value, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (tenant_id, doc_type, period)
		DO UPDATE SET next_value = number_sequences.next_value + 1, updated_at = excluded.updated_at
		RETURNING next_value`,
		tenantID, string(docType), period.String(), time.Now(),
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

var _ document.NumberSequenceRepository = (*GormNumberSequenceRepository)(nil)
