package document

import (
	"context"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository is the persistence port for commercial documents. The repository
// exclusively owns persisted state; the engine works on an in-memory snapshot
// for one logical operation and writes back atomically. Lines and payments
// are owned by their document and never outlive it.
type Repository interface {
	// FindByIDForTenant loads a document with its lines, scoped to the tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CommercialDocument, error)

	// FindByNumber loads a document by its reference number
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*CommercialDocument, error)

	// FindAllForTenant lists documents matching the filter; Filters supports
	// "type", "status", "customer_id", and "parent_id" keys
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*CommercialDocument, error)

	// CountForTenant counts documents matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindOverdueCandidates lists invoices past their due date that are still
	// in a state mark-overdue departs from
	FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID) ([]*CommercialDocument, error)

	// Save persists a new document with its lines
	Save(ctx context.Context, doc *CommercialDocument) error

	// SaveWithLock persists an existing document only if the stored version
	// still matches expectedVersion; fails with CONCURRENT_MODIFICATION
	// otherwise
	SaveWithLock(ctx context.Context, doc *CommercialDocument, expectedVersion int) error

	// SaveConversion persists a conversion pair atomically: the new target and
	// the updated source in one transaction. A failure on either side rolls
	// back both; a target without a source marked converted (or the reverse)
	// must never be observable.
	SaveConversion(ctx context.Context, source *CommercialDocument, sourceExpectedVersion int, target *CommercialDocument) error

	// DeleteForTenant removes a document and its lines
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
