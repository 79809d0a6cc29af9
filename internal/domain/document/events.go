package document

import (
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types for the commercial document aggregate
const (
	EventDocumentCreated   = "document.created"
	EventDocumentValidated = "document.validated"
	EventStatusChanged     = "document.status_changed"
	EventDocumentConverted = "document.converted"
	EventPaymentRecorded   = "document.payment_recorded"
	EventDocumentCancelled = "document.cancelled"
)

const aggregateType = "CommercialDocument"

// DocumentCreatedEvent is raised when a new document enters the system
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	CustomerID   uuid.UUID    `json:"customer_id"`
}

// NewDocumentCreatedEvent creates a document created event
func NewDocumentCreatedEvent(doc *CommercialDocument) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentCreated, aggregateType, doc.ID, doc.TenantID),
		DocumentType:    doc.Type,
		CustomerID:      doc.CustomerID,
	}
}

// DocumentValidatedEvent is raised when a draft is validated and numbered
type DocumentValidatedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	Number       string       `json:"number"`
	Total        string       `json:"total"`
}

// NewDocumentValidatedEvent creates a document validated event
func NewDocumentValidatedEvent(doc *CommercialDocument) *DocumentValidatedEvent {
	return &DocumentValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentValidated, aggregateType, doc.ID, doc.TenantID),
		DocumentType:    doc.Type,
		Number:          doc.Number,
		Total:           doc.Total.String(),
	}
}

// StatusChangedEvent is raised on every lifecycle transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType   `json:"document_type"`
	Operation    Operation      `json:"operation"`
	FromStatus   DocumentStatus `json:"from_status"`
	ToStatus     DocumentStatus `json:"to_status"`
}

// NewStatusChangedEvent creates a status changed event
func NewStatusChangedEvent(doc *CommercialDocument, op Operation, from, to DocumentStatus) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStatusChanged, aggregateType, doc.ID, doc.TenantID),
		DocumentType:    doc.Type,
		Operation:       op,
		FromStatus:      from,
		ToStatus:        to,
	}
}

// DocumentConvertedEvent is raised on the source document when a conversion
// produces a new downstream document.
type DocumentConvertedEvent struct {
	shared.BaseDomainEvent
	SourceType   DocumentType `json:"source_type"`
	TargetType   DocumentType `json:"target_type"`
	TargetID     uuid.UUID    `json:"target_id"`
	TargetNumber string       `json:"target_number"`
}

// NewDocumentConvertedEvent creates a document converted event
func NewDocumentConvertedEvent(source *CommercialDocument, target *CommercialDocument) *DocumentConvertedEvent {
	return &DocumentConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentConverted, aggregateType, source.ID, source.TenantID),
		SourceType:      source.Type,
		TargetType:      target.Type,
		TargetID:        target.ID,
		TargetNumber:    target.Number,
	}
}

// PaymentRecordedEvent is raised when a payment is applied to an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID       `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Overpaid        bool            `json:"overpaid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
}

// NewPaymentRecordedEvent creates a payment recorded event
func NewPaymentRecordedEvent(doc *CommercialDocument, payment Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRecorded, aggregateType, doc.ID, doc.TenantID),
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		PaidAmount:      doc.PaidAmount,
		RemainingAmount: doc.RemainingAmount,
		Overpaid:        doc.Overpaid,
		PaidAt:          doc.PaidAt,
	}
}

// DocumentCancelledEvent is raised when a document is cancelled
type DocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentType DocumentType `json:"document_type"`
	Reason       string       `json:"reason,omitempty"`
}

// NewDocumentCancelledEvent creates a document cancelled event
func NewDocumentCancelledEvent(doc *CommercialDocument, reason string) *DocumentCancelledEvent {
	return &DocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDocumentCancelled, aggregateType, doc.ID, doc.TenantID),
		DocumentType:    doc.Type,
		Reason:          reason,
	}
}
