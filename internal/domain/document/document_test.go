package document

import (
	"testing"
	"time"

	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCustomer() acl.CustomerReference {
	return acl.NewCustomerReference(uuid.New(), "Acme Corp", "ACME", "FR12345678901", "1 Rue de la Paix, Paris")
}

func testNumber(docType DocumentType) string {
	return FormatNumber(docType, PeriodOf(time.Now()), 1)
}

func newTestDocument(t *testing.T, docType DocumentType) *CommercialDocument {
	t.Helper()
	doc, err := NewCommercialDocument(uuid.New(), uuid.New(), docType, testNumber(docType), testCustomer(), time.Now(), valueobject.EUR)
	require.NoError(t, err)
	return doc
}

// newPaidableInvoice returns a validated invoice with a total of 1200.00
func newPaidableInvoice(t *testing.T) *CommercialDocument {
	t.Helper()
	doc := newTestDocument(t, DocumentTypeInvoice)
	_, err := doc.AddLine("SRV-1", "Consulting", lineInput("1", "1000", "0", "20"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))
	return doc
}

func mustPayment(t *testing.T, amount string) Payment {
	t.Helper()
	p, err := NewPayment(decimal.RequireFromString(amount), PaymentMethodBankTransfer, time.Now(), "WIRE-1")
	require.NoError(t, err)
	return p
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewCommercialDocument(t *testing.T) {
	tenantID := uuid.New()
	createdBy := uuid.New()
	customer := testCustomer()

	doc, err := NewCommercialDocument(tenantID, createdBy, DocumentTypeQuote, "QT-26-08-0001", customer, time.Now(), valueobject.EUR)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, doc.Status)
	assert.Equal(t, tenantID, doc.TenantID)
	assert.Equal(t, "QT-26-08-0001", doc.Number)
	assert.Equal(t, customer.ID(), doc.CustomerID)
	assert.Equal(t, "Acme Corp", doc.CustomerName)
	assert.Equal(t, 1, doc.GetVersion())
	assert.True(t, doc.Total.IsZero())
	require.Len(t, doc.GetDomainEvents(), 1)
	assert.Equal(t, EventDocumentCreated, doc.GetDomainEvents()[0].EventType())
}

func TestNewCommercialDocument_Invalid(t *testing.T) {
	_, err := NewCommercialDocument(uuid.New(), uuid.New(), DocumentType("RECEIPT"), "X-1", testCustomer(), time.Now(), valueobject.EUR)
	assertDomainCode(t, err, shared.CodeInvalidInput)

	_, err = NewCommercialDocument(uuid.New(), uuid.New(), DocumentTypeQuote, "", testCustomer(), time.Now(), valueobject.EUR)
	assertDomainCode(t, err, shared.CodeInvalidInput)

	_, err = NewCommercialDocument(uuid.New(), uuid.New(), DocumentTypeQuote, "QT-26-08-0001", acl.CustomerReference{}, time.Now(), valueobject.EUR)
	assertDomainCode(t, err, shared.CodeValidationError)
}

func TestAddLine_RecalculatesTotals(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)

	line, err := doc.AddLine("P-1", "Widget", lineInput("2", "100", "10", "20"))
	require.NoError(t, err)
	assert.Equal(t, 1, line.LineNumber)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(216)), "got %s", doc.Total)

	_, err = doc.AddLine("P-2", "Gadget", lineInput("1", "84", "0", "0"))
	require.NoError(t, err)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(300)), "got %s", doc.Total)
	assert.Equal(t, 2, doc.Lines[1].LineNumber)
}

func TestAddLine_InvalidInput(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("", "Bad", lineInput("0", "10", "0", "0"))
	assertDomainCode(t, err, shared.CodeInvalidLineInput)
	assert.Empty(t, doc.Lines)
	assert.True(t, doc.Total.IsZero())
}

func TestUpdateLine(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	line, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)

	require.NoError(t, doc.UpdateLine(line.ID, "P-1", "Widget deluxe", lineInput("2", "100", "0", "0")))
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(200)), "got %s", doc.Total)
	assert.Equal(t, "Widget deluxe", doc.Lines[0].Description)

	err = doc.UpdateLine(uuid.New(), "", "Ghost", lineInput("1", "1", "0", "0"))
	assertDomainCode(t, err, shared.CodeNotFound)
}

func TestRemoveLine_Resequences(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "First", lineInput("1", "10", "0", "0"))
	require.NoError(t, err)
	second, err := doc.AddLine("P-2", "Second", lineInput("1", "20", "0", "0"))
	require.NoError(t, err)
	_, err = doc.AddLine("P-3", "Third", lineInput("1", "30", "0", "0"))
	require.NoError(t, err)

	require.NoError(t, doc.RemoveLine(second.ID))

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, 1, doc.Lines[0].LineNumber)
	assert.Equal(t, 2, doc.Lines[1].LineNumber)
	assert.Equal(t, "Third", doc.Lines[1].Description)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(40)), "got %s", doc.Total)
}

func TestLines_FrozenAfterValidate(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	line, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))

	_, err = doc.AddLine("P-2", "Late", lineInput("1", "1", "0", "0"))
	assertDomainCode(t, err, shared.CodeInvalidTransition)

	err = doc.UpdateLine(line.ID, "P-1", "Changed", lineInput("2", "100", "0", "0"))
	assertDomainCode(t, err, shared.CodeInvalidTransition)

	err = doc.RemoveLine(line.ID)
	assertDomainCode(t, err, shared.CodeInvalidTransition)
}

func TestValidate(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "Widget", lineInput("2", "100", "10", "20"))
	require.NoError(t, err)

	validator := uuid.New()
	require.NoError(t, doc.Validate(validator))

	assert.Equal(t, StatusValidated, doc.Status)
	require.NotNil(t, doc.ValidatedBy)
	assert.Equal(t, validator, *doc.ValidatedBy)
	assert.NotNil(t, doc.ValidatedAt)
	assert.True(t, doc.Total.Equal(decimal.NewFromInt(216)), "got %s", doc.Total)
}

func TestValidate_RequiresLines(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	err := doc.Validate(uuid.New())
	assertDomainCode(t, err, shared.CodeValidationError)
	assert.Equal(t, StatusDraft, doc.Status)
	assert.Nil(t, doc.ValidatedAt)
}

func TestValidate_NotDraft(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "Widget", lineInput("1", "1", "0", "0"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))

	err = doc.Validate(uuid.New())
	assertDomainCode(t, err, shared.CodeInvalidTransition)
}

func TestQuoteLifecycle(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)

	require.NoError(t, doc.Validate(uuid.New()))
	require.NoError(t, doc.Send())
	assert.NotNil(t, doc.SentAt)
	require.NoError(t, doc.Accept())
	assert.Equal(t, StatusAccepted, doc.Status)
	assert.True(t, doc.IsTerminal())
}

func TestOrderLifecycle(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeOrder)
	_, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)

	require.NoError(t, doc.Validate(uuid.New()))
	require.NoError(t, doc.Confirm())
	require.NoError(t, doc.StartProgress())

	deliveryDate := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, doc.Deliver(deliveryDate))
	assert.Equal(t, StatusDelivered, doc.Status)
	require.NotNil(t, doc.DeliveryDate)
	assert.Equal(t, deliveryDate, *doc.DeliveryDate)
	assert.True(t, doc.IsTerminal())
}

func TestCreditNoteLifecycle(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeCreditNote)
	_, err := doc.AddLine("", "Refund", lineInput("1", "100", "0", "20"))
	require.NoError(t, err)

	require.NoError(t, doc.Validate(uuid.New()))
	require.NoError(t, doc.Apply())
	assert.Equal(t, StatusApplied, doc.Status)
	assert.True(t, doc.IsTerminal())
}

func TestApply_NotACreditNote(t *testing.T) {
	doc := newPaidableInvoice(t)
	err := doc.Apply()
	assertDomainCode(t, err, shared.CodeInvalidTransition)
}

func TestCancel(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	require.NoError(t, doc.Cancel("customer withdrew"))
	assert.Equal(t, StatusCancelled, doc.Status)
	assert.Equal(t, "customer withdrew", doc.CancelReason)
	assert.NotNil(t, doc.CancelledAt)
}

func TestCancel_TerminalState(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))
	require.NoError(t, doc.Accept())

	err = doc.Cancel("too late")
	assertDomainCode(t, err, shared.CodeInvalidTransition)
	assert.Equal(t, StatusAccepted, doc.Status)
}

func TestCancel_InvoiceWithPayments(t *testing.T) {
	doc := newPaidableInvoice(t)
	require.NoError(t, doc.ApplyPayment(mustPayment(t, "100")))

	err := doc.Cancel("changed my mind")
	assertDomainCode(t, err, shared.CodeCancelNotAllowed)
	assert.Equal(t, StatusPartial, doc.Status)
}

func TestCanDelete(t *testing.T) {
	doc := newTestDocument(t, DocumentTypeQuote)
	require.NoError(t, doc.CanDelete())

	_, err := doc.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))

	err = doc.CanDelete()
	assertDomainCode(t, err, shared.CodeDeleteNotAllowed)
}

func TestApplyPayment_FullInTwoInstallments(t *testing.T) {
	doc := newPaidableInvoice(t)

	require.NoError(t, doc.ApplyPayment(mustPayment(t, "700")))
	assert.Equal(t, StatusPartial, doc.Status)
	assert.True(t, doc.PaidAmount.Equal(decimal.NewFromInt(700)))
	assert.True(t, doc.RemainingAmount.Equal(decimal.NewFromInt(500)))
	assert.False(t, doc.Overpaid)
	assert.Nil(t, doc.PaidAt)

	require.NoError(t, doc.ApplyPayment(mustPayment(t, "500")))
	assert.Equal(t, StatusPaid, doc.Status)
	assert.True(t, doc.PaidAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, doc.RemainingAmount.IsZero())
	assert.False(t, doc.Overpaid)
	assert.NotNil(t, doc.PaidAt)
	assert.Len(t, doc.Payments, 2)
}

func TestApplyPayment_ExactSingle(t *testing.T) {
	doc := newPaidableInvoice(t)
	require.NoError(t, doc.ApplyPayment(mustPayment(t, "1200")))
	assert.Equal(t, StatusPaid, doc.Status)
	assert.True(t, doc.IsTerminal())
}

// Overpayment is accepted and flagged, never silently clipped. The remaining
// amount floors at zero but paid_amount keeps the real figure.
func TestApplyPayment_Overpaid(t *testing.T) {
	doc := newPaidableInvoice(t)
	require.NoError(t, doc.ApplyPayment(mustPayment(t, "1300")))

	assert.Equal(t, StatusPaid, doc.Status)
	assert.True(t, doc.Overpaid)
	assert.True(t, doc.PaidAmount.Equal(decimal.NewFromInt(1300)))
	assert.True(t, doc.RemainingAmount.IsZero())
	assert.NotNil(t, doc.PaidAt)
}

func TestApplyPayment_FromOverdue(t *testing.T) {
	doc := newPaidableInvoice(t)
	require.NoError(t, doc.Send())
	require.NoError(t, doc.MarkOverdue())

	require.NoError(t, doc.ApplyPayment(mustPayment(t, "200")))
	assert.Equal(t, StatusPartial, doc.Status)
}

func TestApplyPayment_Rejections(t *testing.T) {
	t.Run("not an invoice", func(t *testing.T) {
		doc := newTestDocument(t, DocumentTypeQuote)
		err := doc.ApplyPayment(mustPayment(t, "10"))
		assertDomainCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("draft invoice", func(t *testing.T) {
		doc := newTestDocument(t, DocumentTypeInvoice)
		err := doc.ApplyPayment(mustPayment(t, "10"))
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("already paid", func(t *testing.T) {
		doc := newPaidableInvoice(t)
		require.NoError(t, doc.ApplyPayment(mustPayment(t, "1200")))
		err := doc.ApplyPayment(mustPayment(t, "1"))
		assertDomainCode(t, err, shared.CodeInvalidTransition)
		assert.Len(t, doc.Payments, 1)
	})
}

func TestNewPayment_Invalid(t *testing.T) {
	_, err := NewPayment(decimal.Zero, PaymentMethodCash, time.Now(), "")
	assertDomainCode(t, err, shared.CodeInvalidInput)

	_, err = NewPayment(decimal.NewFromInt(-5), PaymentMethodCash, time.Now(), "")
	assertDomainCode(t, err, shared.CodeInvalidInput)

	_, err = NewPayment(decimal.NewFromInt(5), PaymentMethod("IOU"), time.Now(), "")
	assertDomainCode(t, err, shared.CodeInvalidInput)
}

func TestMarkOverdue(t *testing.T) {
	doc := newPaidableInvoice(t)
	require.NoError(t, doc.Send())
	require.NoError(t, doc.MarkOverdue())
	assert.Equal(t, StatusOverdue, doc.Status)

	t.Run("not from validated", func(t *testing.T) {
		doc := newPaidableInvoice(t)
		err := doc.MarkOverdue()
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("only invoices", func(t *testing.T) {
		doc := newTestDocument(t, DocumentTypeOrder)
		err := doc.MarkOverdue()
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})
}
