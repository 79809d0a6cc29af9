package document

import (
	"fmt"
	"time"

	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommercialDocument is the aggregate root for the document lifecycle engine.
// One type models quotes, orders, invoices, and credit notes; the per-type
// transition tables in status.go decide what each instance may do.
//
// Aggregate amounts are always the sum of line-level values recomputed by the
// calculator; they are never hand-edited.
type CommercialDocument struct {
	shared.TenantAggregateRoot

	Type   DocumentType
	Number string
	Status DocumentStatus

	// Customer snapshot, captured at creation time and frozen thereafter.
	// Later changes in the customer directory never alter this document.
	CustomerID      uuid.UUID
	CustomerName    string
	CustomerCode    string
	CustomerTaxID   string
	CustomerAddress string

	// Lineage. ParentID/ParentType point at the document this one was
	// converted from; ConvertedTo points at the document produced from
	// this one. At most one parent, acyclic by construction.
	ParentID    *uuid.UUID
	ParentType  *DocumentType
	ConvertedTo *uuid.UUID

	Date         time.Time
	DueDate      *time.Time
	ValidityDate *time.Time
	DeliveryDate *time.Time

	Lines    []DocumentLine
	Currency valueobject.Currency

	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal

	// Payment reconciliation state, meaningful for INVOICE only.
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Overpaid        bool
	Payments        Payments

	ValidatedBy  *uuid.UUID
	ValidatedAt  *time.Time
	SentAt       *time.Time
	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewCommercialDocument creates a new document in DRAFT with its reference
// number already issued. Numbers are consumed at creation and never reused,
// even if the draft is later deleted.
func NewCommercialDocument(tenantID, createdBy uuid.UUID, docType DocumentType, number string, customer acl.CustomerReference, date time.Time, currency valueobject.Currency) (*CommercialDocument, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid document type %s", docType))
	}
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Document number cannot be empty")
	}
	if !customer.IsResolved() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Customer reference is not resolved")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if date.IsZero() {
		date = time.Now()
	}

	doc := &CommercialDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Type:                docType,
		Number:              number,
		Status:              StatusDraft,
		CustomerID:          customer.ID(),
		CustomerName:        customer.Name(),
		CustomerCode:        customer.Code(),
		CustomerTaxID:       customer.TaxID(),
		CustomerAddress:     customer.Address(),
		Date:                date,
		Lines:               make([]DocumentLine, 0),
		Currency:            currency,
		Subtotal:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		TaxAmount:           decimal.Zero,
		Total:               decimal.Zero,
		PaidAmount:          decimal.Zero,
		RemainingAmount:     decimal.Zero,
		Payments:            make(Payments, 0),
	}
	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))
	return doc, nil
}

// IsDraft reports whether the document is still editable
func (d *CommercialDocument) IsDraft() bool {
	return d.Status == StatusDraft
}

// IsTerminal reports whether the document reached a terminal state
func (d *CommercialDocument) IsTerminal() bool {
	return d.Type.IsTerminal(d.Status)
}

// requireDraft guards line mutations: lines are frozen once the document
// leaves DRAFT.
func (d *CommercialDocument) requireDraft() error {
	if !d.IsDraft() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Lines can only be modified in DRAFT status, current status is %s", d.Status))
	}
	return nil
}

// AddLine appends a line at the next ordinal and recomputes totals
func (d *CommercialDocument) AddLine(productRef, description string, in LineInput) (*DocumentLine, error) {
	if err := d.requireDraft(); err != nil {
		return nil, err
	}

	line, err := NewDocumentLine(d.ID, len(d.Lines)+1, productRef, description, in, d.Currency)
	if err != nil {
		return nil, err
	}
	d.Lines = append(d.Lines, *line)
	d.recalculateTotals()
	d.Touch()
	return &d.Lines[len(d.Lines)-1], nil
}

// UpdateLine replaces the input of the line with the given ID and recomputes totals
func (d *CommercialDocument) UpdateLine(lineID uuid.UUID, productRef, description string, in LineInput) error {
	if err := d.requireDraft(); err != nil {
		return err
	}

	for i := range d.Lines {
		if d.Lines[i].ID == lineID {
			if err := d.Lines[i].Update(productRef, description, in, d.Currency); err != nil {
				return err
			}
			d.recalculateTotals()
			d.Touch()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Line not found")
}

// RemoveLine deletes a line and resequences the remaining ordinals so line
// numbers stay 1-based and contiguous.
func (d *CommercialDocument) RemoveLine(lineID uuid.UUID) error {
	if err := d.requireDraft(); err != nil {
		return err
	}

	for i := range d.Lines {
		if d.Lines[i].ID == lineID {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			for j := range d.Lines {
				d.Lines[j].LineNumber = j + 1
			}
			d.recalculateTotals()
			d.Touch()
			return nil
		}
	}
	return shared.NewDomainError(shared.CodeNotFound, "Line not found")
}

func (d *CommercialDocument) recalculateTotals() {
	totals := ComputeDocumentTotals(d.Lines, d.Currency)
	d.Subtotal = totals.Subtotal.Amount()
	d.DiscountAmount = totals.DiscountAmount.Amount()
	d.TaxAmount = totals.TaxAmount.Amount()
	d.Total = totals.Total.Amount()
	if d.Type == DocumentTypeInvoice {
		d.RemainingAmount = decimal.Max(d.Total.Sub(d.PaidAmount), decimal.Zero)
	}
}

// transitionTo resolves op against the type's transition table, applies the
// resulting status, and records the status-changed event. The document is
// left untouched on failure.
func (d *CommercialDocument) transitionTo(op Operation) error {
	next, err := NextStatus(d.Type, op, d.Status)
	if err != nil {
		return err
	}
	from := d.Status
	d.Status = next
	d.Touch()
	d.AddDomainEvent(NewStatusChangedEvent(d, op, from, next))
	return nil
}

// Validate moves a draft to VALIDATED: requires at least one line, a resolved
// customer, and non-negative totals; recomputes totals one final time and
// freezes the lines.
func (d *CommercialDocument) Validate(validatedBy uuid.UUID) error {
	if d.Status != StatusDraft {
		return NewInvalidTransitionError(d.Status, OpValidate)
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError(shared.CodeValidationError, "Document must have at least one line")
	}
	if d.CustomerID == uuid.Nil || d.CustomerName == "" {
		return shared.NewDomainError(shared.CodeValidationError, "Document customer is not resolved")
	}

	d.recalculateTotals()
	if d.Total.IsNegative() || d.Subtotal.IsNegative() {
		return shared.NewDomainError(shared.CodeValidationError, "Document totals cannot be negative")
	}

	if err := d.transitionTo(OpValidate); err != nil {
		return err
	}
	now := time.Now()
	d.ValidatedBy = &validatedBy
	d.ValidatedAt = &now
	d.AddDomainEvent(NewDocumentValidatedEvent(d))
	return nil
}

// Send marks the document as sent to the customer
func (d *CommercialDocument) Send() error {
	if err := d.transitionTo(OpSend); err != nil {
		return err
	}
	now := time.Now()
	d.SentAt = &now
	return nil
}

// Accept marks a quote as accepted by the customer
func (d *CommercialDocument) Accept() error {
	return d.transitionTo(OpAccept)
}

// Reject marks a quote as rejected by the customer
func (d *CommercialDocument) Reject() error {
	return d.transitionTo(OpReject)
}

// Expire marks a quote as expired past its validity date
func (d *CommercialDocument) Expire() error {
	return d.transitionTo(OpExpire)
}

// Confirm confirms a validated order for fulfillment
func (d *CommercialDocument) Confirm() error {
	return d.transitionTo(OpConfirm)
}

// StartProgress marks a confirmed order as being fulfilled
func (d *CommercialDocument) StartProgress() error {
	return d.transitionTo(OpMarkProgress)
}

// Deliver marks an order as delivered
func (d *CommercialDocument) Deliver(deliveryDate time.Time) error {
	if err := d.transitionTo(OpDeliver); err != nil {
		return err
	}
	if deliveryDate.IsZero() {
		deliveryDate = time.Now()
	}
	d.DeliveryDate = &deliveryDate
	return nil
}

// MarkOverdue flags an unpaid invoice past its due date. Called by the
// overdue sweep, never by a timer inside the engine.
func (d *CommercialDocument) MarkOverdue() error {
	if d.Type != DocumentTypeInvoice {
		return NewInvalidTransitionError(d.Status, OpMarkOverdue)
	}
	return d.transitionTo(OpMarkOverdue)
}

// Apply applies a validated credit note against its parent invoice
func (d *CommercialDocument) Apply() error {
	if d.Type != DocumentTypeCreditNote {
		return NewInvalidTransitionError(d.Status, OpApply)
	}
	return d.transitionTo(OpApply)
}

// Cancel marks the document CANCELLED without deleting it. An invoice that
// has already received money cannot be cancelled; reconciliation goes through
// a credit note instead.
func (d *CommercialDocument) Cancel(reason string) error {
	if d.Type == DocumentTypeInvoice && d.PaidAmount.IsPositive() {
		return shared.NewDomainError(shared.CodeCancelNotAllowed,
			"Invoice with recorded payments cannot be cancelled, issue a credit note instead")
	}
	if err := d.transitionTo(OpCancel); err != nil {
		return err
	}
	now := time.Now()
	d.CancelledAt = &now
	d.CancelReason = reason
	d.AddDomainEvent(NewDocumentCancelledEvent(d, reason))
	return nil
}

// CanDelete reports whether the document may be physically deleted.
// Only drafts are deletable; everything else is cancelled, not deleted.
func (d *CommercialDocument) CanDelete() error {
	if d.Status != StatusDraft {
		return shared.NewDomainError(shared.CodeDeleteNotAllowed,
			fmt.Sprintf("Only DRAFT documents can be deleted, current status is %s", d.Status))
	}
	return nil
}

// MarkConverted records the lineage pointer to the document produced from
// this one.
func (d *CommercialDocument) MarkConverted(targetID uuid.UUID) {
	d.ConvertedTo = &targetID
	d.Touch()
}

// ApplyPayment appends a payment to an invoice and derives the resulting
// status: remaining == 0 yields PAID, a partial amount yields PARTIAL.
// Overpayment is accepted and surfaced via the Overpaid flag, never clipped,
// so downstream reconciliation can react.
func (d *CommercialDocument) ApplyPayment(payment Payment) error {
	if d.Type != DocumentTypeInvoice {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payments can only be applied to invoices")
	}
	switch d.Status {
	case StatusValidated, StatusSent, StatusPartial, StatusOverdue:
	default:
		return NewInvalidTransitionError(d.Status, OpMarkPaid)
	}

	d.Payments = append(d.Payments, payment)
	d.PaidAmount = d.PaidAmount.Add(payment.Amount)
	d.RemainingAmount = decimal.Max(d.Total.Sub(d.PaidAmount), decimal.Zero)
	d.Overpaid = d.PaidAmount.GreaterThan(d.Total)

	if d.RemainingAmount.IsZero() {
		if err := d.transitionTo(OpMarkPaid); err != nil {
			return err
		}
		now := time.Now()
		d.PaidAt = &now
	} else if err := d.transitionTo(OpMarkPartial); err != nil {
		return err
	}

	d.AddDomainEvent(NewPaymentRecordedEvent(d, payment))
	return nil
}
