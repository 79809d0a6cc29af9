package document

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentService reconciles payments against invoices
type PaymentService struct {
	repo           document.Repository
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo document.Repository) *PaymentService {
	return &PaymentService{repo: repo}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ApplyPayment records a payment on an invoice and derives the resulting
// status. The write carries an optimistic version check so two simultaneous
// payments cannot silently overwrite each other's reconciliation state.
func (s *PaymentService) ApplyPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req ApplyPaymentRequest) (*DocumentResponse, error) {
	invoice, err := s.repo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	expectedVersion := invoice.GetVersion()

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	payment, err := document.NewPayment(req.Amount, document.PaymentMethod(req.Method), date, req.Reference)
	if err != nil {
		return nil, err
	}

	if err := invoice.ApplyPayment(payment); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, invoice, expectedVersion); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, invoice.GetDomainEvents()...)
		invoice.ClearDomainEvents()
	}

	response := ToDocumentResponse(invoice)
	return &response, nil
}
