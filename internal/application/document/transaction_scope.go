package document

import (
	"context"

	"github.com/docflow/backend/internal/domain/document"
)

// TransactionScope provides transactional access to the document repositories.
// When a function runs within a scope, all repository operations belong to the
// same database transaction and commit or roll back atomically. Conversion
// depends on this: a target document with no number, or a source marked
// converted with no target, must never be observable.
type TransactionScope interface {
	// Execute runs fn inside one database transaction. An error from fn rolls
	// the transaction back; success commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides the repositories bound to the current
// transaction.
type TransactionalRepositories interface {
	// DocumentRepo returns the document repository scoped to the transaction
	DocumentRepo() document.Repository
	// SequenceRepo returns the number sequence repository scoped to the
	// transaction, so number issuance rolls back with the document write
	SequenceRepo() document.NumberSequenceRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for tests and for backends that do not need transactional scoping.
type NoOpTransactionScope struct {
	documentRepo document.Repository
	sequenceRepo document.NumberSequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(documentRepo document.Repository, sequenceRepo document.NumberSequenceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		documentRepo: documentRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Execute runs the function without transactional guarantees
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DocumentRepo returns the document repository
func (s *NoOpTransactionScope) DocumentRepo() document.Repository {
	return s.documentRepo
}

// SequenceRepo returns the number sequence repository
func (s *NoOpTransactionScope) SequenceRepo() document.NumberSequenceRepository {
	return s.sequenceRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
