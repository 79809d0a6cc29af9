package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForTenant finds a document by ID within a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.CommercialDocument, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a document by its reference number within a tenant
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*document.CommercialDocument, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds documents for a tenant with filtering and pagination
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*document.CommercialDocument, error) {
	var rows []models.DocumentModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.DocumentModel{}).
			Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
			Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]*document.CommercialDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// CountForTenant counts documents for a tenant matching the filter
func (r *GormDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyConditions(
		r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOverdueCandidates finds invoices past their due date still in a state
// the overdue transition departs from
func (r *GormDocumentRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID) ([]*document.CommercialDocument, error) {
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("tenant_id = ? AND type = ? AND status IN ? AND due_date IS NOT NULL AND due_date < ?",
			tenantID, document.DocumentTypeInvoice,
			[]document.DocumentStatus{document.StatusSent, document.StatusPartial},
			time.Now()).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	docs := make([]*document.CommercialDocument, len(rows))
	for i := range rows {
		docs[i] = rows[i].ToDomain()
	}
	return docs, nil
}

// Save creates a new document with its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.CommercialDocument) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveWithLock updates an existing document only if the stored version still
// matches expectedVersion; otherwise fails with CONCURRENT_MODIFICATION and
// leaves the row untouched.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *document.CommercialDocument, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, doc, expectedVersion)
	})
}

// SaveConversion persists a conversion pair atomically: the updated source
// (with its version check) and the newly created target in one transaction.
func (r *GormDocumentRepository) SaveConversion(ctx context.Context, source *document.CommercialDocument, sourceExpectedVersion int, target *document.CommercialDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, source, sourceExpectedVersion); err != nil {
			return err
		}
		targetModel := models.DocumentModelFromDomain(target)
		return tx.Create(targetModel).Error
	})
}

// DeleteForTenant removes a document and its lines
func (r *GormDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.DocumentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormDocumentRepository) saveWithLockTx(tx *gorm.DB, doc *document.CommercialDocument, expectedVersion int) error {
	doc.IncrementVersion()
	doc.UpdatedAt = time.Now()
	model := models.DocumentModelFromDomain(doc)

	result := tx.Model(&models.DocumentModel{}).
		Where("id = ? AND version = ?", doc.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           model.Status,
			"converted_to":     model.ConvertedTo,
			"due_date":         model.DueDate,
			"validity_date":    model.ValidityDate,
			"delivery_date":    model.DeliveryDate,
			"subtotal":         model.Subtotal,
			"discount_amount":  model.DiscountAmount,
			"tax_amount":       model.TaxAmount,
			"total":            model.Total,
			"paid_amount":      model.PaidAmount,
			"remaining_amount": model.RemainingAmount,
			"overpaid":         model.Overpaid,
			"payments":         model.Payments,
			"validated_by":     model.ValidatedBy,
			"validated_at":     model.ValidatedAt,
			"sent_at":          model.SentAt,
			"paid_at":          model.PaidAt,
			"cancelled_at":     model.CancelledAt,
			"cancel_reason":    model.CancelReason,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or someone committed in between; a fresh
		// read tells the caller which.
		var count int64
		if err := tx.Model(&models.DocumentModel{}).Where("id = ?", doc.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	// Replace lines: delete removed ones, upsert the rest
	currentLineIDs := make([]uuid.UUID, len(model.Lines))
	for i := range model.Lines {
		currentLineIDs[i] = model.Lines[i].ID
	}
	if len(currentLineIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", doc.ID, currentLineIDs).
			Delete(&models.DocumentLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", doc.ID).
			Delete(&models.DocumentLineModel{}).Error; err != nil {
			return err
		}
	}
	for i := range model.Lines {
		model.Lines[i].DocumentID = doc.ID
		if err := tx.Save(&model.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies conditions plus ordering and pagination
func (r *GormDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyConditions(query, filter)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := strings.ToLower(filter.OrderDir)
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = "desc"
	}
	// Whitelisted sort columns; anything else falls back to created_at
	switch orderBy {
	case "created_at", "date", "due_date", "number", "total", "status":
	default:
		orderBy = "created_at"
	}
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// applyConditions applies search and field filters without pagination
func (r *GormDocumentRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number LIKE ? OR customer_name LIKE ?", pattern, pattern)
	}
	if v, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", v)
	}
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", v)
	}
	if v, ok := filter.Filters["customer_id"]; ok {
		query = query.Where("customer_id = ?", v)
	}
	if v, ok := filter.Filters["parent_id"]; ok {
		query = query.Where("parent_id = ?", v)
	}
	return query
}

var _ document.Repository = (*GormDocumentRepository)(nil)
