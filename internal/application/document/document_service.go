package document

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DocumentService handles the commercial document lifecycle: creation, line
// editing, and the named status operations. Each public method is one atomic
// unit of work against the repository.
type DocumentService struct {
	repo           document.Repository
	directory      acl.CustomerDirectory
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repo document.Repository, directory acl.CustomerDirectory, scope TransactionScope) *DocumentService {
	return &DocumentService{
		repo:      repo,
		directory: directory,
		scope:     scope,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new document in DRAFT. The reference number is issued
// inside the same transaction as the document write, so a failed save rolls
// the draft back while the consumed number stays burned, never reissued.
func (s *DocumentService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	docType := document.DocumentType(req.Type)

	customer, err := s.directory.GetCustomerReference(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	var doc *document.CommercialDocument
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		authority := document.NewNumberingAuthority(repos.SequenceRepo())
		number, err := authority.NextNumber(ctx, tenantID, docType, document.PeriodOf(date))
		if err != nil {
			return err
		}

		doc, err = document.NewCommercialDocument(tenantID, userID, docType, number, customer, date, currency)
		if err != nil {
			return err
		}
		doc.DueDate = req.DueDate
		doc.ValidityDate = req.ValidityDate

		for _, line := range req.Lines {
			if _, err := doc.AddLine(line.ProductRef, line.Description, toDomainLineInput(line)); err != nil {
				return err
			}
		}

		return repos.DocumentRepo().Save(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves a document by ID
func (s *DocumentService) GetByID(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByNumber retrieves a document by its reference number
func (s *DocumentService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*DocumentResponse, error) {
	doc, err := s.repo.FindByNumber(ctx, tenantID, number)
	if err != nil {
		return nil, err
	}
	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]DocumentListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.ParentID != nil {
		domainFilter.Filters["parent_id"] = *filter.ParentID
	}

	docs, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]DocumentListItemResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, ToDocumentListItem(doc))
	}
	return items, total, nil
}

// AddLine adds a line to a draft document
func (s *DocumentService) AddLine(ctx context.Context, tenantID, docID uuid.UUID, req LineInput) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		_, err := doc.AddLine(req.ProductRef, req.Description, toDomainLineInput(req))
		return err
	})
}

// UpdateLine updates a line on a draft document
func (s *DocumentService) UpdateLine(ctx context.Context, tenantID, docID, lineID uuid.UUID, req LineInput) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.UpdateLine(lineID, req.ProductRef, req.Description, toDomainLineInput(req))
	})
}

// RemoveLine removes a line from a draft document
func (s *DocumentService) RemoveLine(ctx context.Context, tenantID, docID, lineID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.RemoveLine(lineID)
	})
}

// Validate validates a draft document, freezing its lines
func (s *DocumentService) Validate(ctx context.Context, tenantID, docID, userID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Validate(userID)
	})
}

// Send marks a document as sent to the customer
func (s *DocumentService) Send(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Send()
	})
}

// Accept marks a quote as accepted
func (s *DocumentService) Accept(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Accept()
	})
}

// Reject marks a quote as rejected
func (s *DocumentService) Reject(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Reject()
	})
}

// Expire marks a quote as expired
func (s *DocumentService) Expire(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Expire()
	})
}

// Confirm confirms a validated order
func (s *DocumentService) Confirm(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Confirm()
	})
}

// StartProgress marks a confirmed order as in progress
func (s *DocumentService) StartProgress(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.StartProgress()
	})
}

// Deliver marks an order as delivered
func (s *DocumentService) Deliver(ctx context.Context, tenantID, docID uuid.UUID, req DeliverDocumentRequest) (*DocumentResponse, error) {
	deliveryDate := time.Now()
	if req.DeliveryDate != nil {
		deliveryDate = *req.DeliveryDate
	}
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Deliver(deliveryDate)
	})
}

// Apply applies a validated credit note
func (s *DocumentService) Apply(ctx context.Context, tenantID, docID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Apply()
	})
}

// Cancel cancels a document without deleting it
func (s *DocumentService) Cancel(ctx context.Context, tenantID, docID uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, tenantID, docID, func(doc *document.CommercialDocument) error {
		return doc.Cancel(req.Reason)
	})
}

// Delete physically deletes a draft document. The number the draft consumed
// is never reissued.
func (s *DocumentService) Delete(ctx context.Context, tenantID, docID uuid.UUID) error {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, docID)
	if err != nil {
		return err
	}
	if err := doc.CanDelete(); err != nil {
		return err
	}
	return s.repo.DeleteForTenant(ctx, tenantID, docID)
}

// mutate loads the document, applies fn, and writes it back with an optimistic
// version check. A stale version fails with CONCURRENT_MODIFICATION and the
// caller retries against a fresh read.
func (s *DocumentService) mutate(ctx context.Context, tenantID, docID uuid.UUID, fn func(*document.CommercialDocument) error) (*DocumentResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}

	expectedVersion := doc.GetVersion()
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, doc, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)
	response := ToDocumentResponse(doc)
	return &response, nil
}

func (s *DocumentService) publishEvents(ctx context.Context, docs ...*document.CommercialDocument) {
	if s.eventPublisher == nil {
		return
	}
	for _, doc := range docs {
		events := doc.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		// Best effort: event delivery failures never fail the committed operation
		_ = s.eventPublisher.Publish(ctx, events...)
		doc.ClearDomainEvents()
	}
}

func toDomainLineInput(in LineInput) document.LineInput {
	return document.LineInput{
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		TaxRate:         in.TaxRate,
	}
}
