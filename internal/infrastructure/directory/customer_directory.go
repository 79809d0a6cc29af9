// Package directory provides the customer directory backing the document
// engine's anti-corruption layer.
package directory

import (
	"context"
	"errors"

	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerDirectory implements acl.CustomerDirectory over the customers table
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GormCustomerDirectory
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// GetCustomerReference resolves the customer snapshot embedded into documents
// at creation time
func (d *GormCustomerDirectory) GetCustomerReference(ctx context.Context, tenantID, customerID uuid.UUID) (acl.CustomerReference, error) {
	var customer models.CustomerModel
	if err := d.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ? AND active = ?", tenantID, customerID, true).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return acl.CustomerReference{}, shared.NewDomainError(shared.CodeValidationError, "Customer not found")
		}
		return acl.CustomerReference{}, err
	}
	return acl.NewCustomerReference(customer.ID, customer.Name, customer.Code, customer.TaxID, customer.Address), nil
}

// CustomerExists reports whether an active customer exists for the tenant
func (d *GormCustomerDirectory) CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("tenant_id = ? AND id = ? AND active = ?", tenantID, customerID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ acl.CustomerDirectory = (*GormCustomerDirectory)(nil)
