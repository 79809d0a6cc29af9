package persistence

import (
	"context"

	appdocument "github.com/docflow/backend/internal/application/document"
	"github.com/docflow/backend/internal/domain/document"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope over a
// GORM transaction. Every repository handed to the callback shares the same
// transaction, so document writes and number issuance commit or roll back
// together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside one database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appdocument.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// DocumentRepo returns the document repository bound to the transaction
func (r *gormTransactionalRepositories) DocumentRepo() document.Repository {
	return NewGormDocumentRepository(r.tx)
}

// SequenceRepo returns the number sequence repository bound to the transaction
func (r *gormTransactionalRepositories) SequenceRepo() document.NumberSequenceRepository {
	return NewGormNumberSequenceRepository(r.tx)
}

var _ appdocument.TransactionScope = (*GormTransactionScope)(nil)
