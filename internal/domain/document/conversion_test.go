package document

import (
	"testing"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConvertibleQuote(t *testing.T) *CommercialDocument {
	t.Helper()
	doc := newTestDocument(t, DocumentTypeQuote)
	_, err := doc.AddLine("P-1", "Widget", lineInput("2", "100", "10", "20"))
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))
	require.NoError(t, doc.Send())
	return doc
}

func TestConvert_QuoteToOrder(t *testing.T) {
	quote := newConvertibleQuote(t)
	createdBy := uuid.New()

	order, err := Convert(quote, DocumentTypeOrder, "SO-26-08-0001", createdBy, ConversionPolicy{})
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeOrder, order.Type)
	assert.Equal(t, StatusDraft, order.Status)
	assert.Equal(t, "SO-26-08-0001", order.Number)
	assert.Equal(t, quote.TenantID, order.TenantID)
	assert.Equal(t, quote.CustomerID, order.CustomerID)
	assert.Equal(t, quote.CustomerName, order.CustomerName)

	// Lineage both ways
	require.NotNil(t, order.ParentID)
	assert.Equal(t, quote.ID, *order.ParentID)
	require.NotNil(t, order.ParentType)
	assert.Equal(t, DocumentTypeQuote, *order.ParentType)
	require.NotNil(t, quote.ConvertedTo)
	assert.Equal(t, order.ID, *quote.ConvertedTo)

	// A converted quote is accepted
	assert.Equal(t, StatusAccepted, quote.Status)

	// Aggregates are recomputed, not copied
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(216)), "got %s", order.Total)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200)), "got %s", order.Subtotal)
}

// Target lines are new, independently-owned lines; editing the target never
// retroactively alters the source.
func TestConvert_LineIndependence(t *testing.T) {
	quote := newConvertibleQuote(t)
	order, err := Convert(quote, DocumentTypeOrder, "SO-26-08-0001", uuid.New(), ConversionPolicy{})
	require.NoError(t, err)

	assert.NotEqual(t, quote.Lines[0].ID, order.Lines[0].ID)
	assert.Equal(t, order.ID, order.Lines[0].DocumentID)

	require.NoError(t, order.UpdateLine(order.Lines[0].ID, "P-1", "Widget", lineInput("5", "100", "0", "20")))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(600)), "got %s", order.Total)
	assert.True(t, quote.Lines[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(216)), "got %s", quote.Total)
}

func TestConvert_OrderToInvoice(t *testing.T) {
	order := newTestDocument(t, DocumentTypeOrder)
	_, err := order.AddLine("P-1", "Widget", lineInput("1", "1000", "0", "20"))
	require.NoError(t, err)
	require.NoError(t, order.Validate(uuid.New()))
	require.NoError(t, order.Confirm())

	invoice, err := Convert(order, DocumentTypeInvoice, "IN-26-08-0001", uuid.New(), ConversionPolicy{})
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeInvoice, invoice.Type)
	assert.True(t, invoice.Total.Equal(decimal.NewFromInt(1200)))
	assert.True(t, invoice.RemainingAmount.Equal(decimal.NewFromInt(1200)))

	// The order keeps its status; only the pointer is added
	assert.Equal(t, StatusConfirmed, order.Status)
	require.NotNil(t, order.ConvertedTo)
	assert.Equal(t, invoice.ID, *order.ConvertedTo)
}

func TestConvert_InvoiceToCreditNote(t *testing.T) {
	invoice := newPaidableInvoice(t)
	require.NoError(t, invoice.ApplyPayment(mustPayment(t, "1200")))
	require.Equal(t, StatusPaid, invoice.Status)

	creditNote, err := Convert(invoice, DocumentTypeCreditNote, "CN-26-08-0001", uuid.New(), ConversionPolicy{})
	require.NoError(t, err)

	assert.Equal(t, DocumentTypeCreditNote, creditNote.Type)
	assert.Equal(t, StatusPaid, invoice.Status)
	require.NotNil(t, creditNote.ParentType)
	assert.Equal(t, DocumentTypeInvoice, *creditNote.ParentType)
}

func TestConvert_Rejections(t *testing.T) {
	t.Run("wrong target type", func(t *testing.T) {
		quote := newConvertibleQuote(t)
		_, err := Convert(quote, DocumentTypeInvoice, "IN-26-08-0001", uuid.New(), ConversionPolicy{})
		assertDomainCode(t, err, shared.CodeInvalidTransition)
		assert.Equal(t, StatusSent, quote.Status)
		assert.Nil(t, quote.ConvertedTo)
	})

	t.Run("credit note has no conversion", func(t *testing.T) {
		cn := newTestDocument(t, DocumentTypeCreditNote)
		_, err := Convert(cn, DocumentTypeQuote, "QT-26-08-0002", uuid.New(), ConversionPolicy{})
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("draft quote", func(t *testing.T) {
		quote := newTestDocument(t, DocumentTypeQuote)
		_, err := Convert(quote, DocumentTypeOrder, "SO-26-08-0002", uuid.New(), ConversionPolicy{})
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})

	t.Run("validated order cannot be invoiced", func(t *testing.T) {
		order := newTestDocument(t, DocumentTypeOrder)
		_, err := order.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
		require.NoError(t, err)
		require.NoError(t, order.Validate(uuid.New()))

		_, err = Convert(order, DocumentTypeInvoice, "IN-26-08-0002", uuid.New(), ConversionPolicy{})
		assertDomainCode(t, err, shared.CodeInvalidTransition)
	})
}

func TestConvert_RepeatedConversion(t *testing.T) {
	order := newTestDocument(t, DocumentTypeOrder)
	_, err := order.AddLine("P-1", "Widget", lineInput("1", "100", "0", "0"))
	require.NoError(t, err)
	require.NoError(t, order.Validate(uuid.New()))
	require.NoError(t, order.Confirm())

	_, err = Convert(order, DocumentTypeInvoice, "IN-26-08-0003", uuid.New(), ConversionPolicy{})
	require.NoError(t, err)

	// Second conversion refused by default
	_, err = Convert(order, DocumentTypeInvoice, "IN-26-08-0004", uuid.New(), ConversionPolicy{})
	assertDomainCode(t, err, shared.CodeInvalidTransition)

	// Permitted when the policy opts in to fan-out
	second, err := Convert(order, DocumentTypeInvoice, "IN-26-08-0004", uuid.New(), ConversionPolicy{AllowRepeatedConversion: true})
	require.NoError(t, err)
	assert.Equal(t, second.ID, *order.ConvertedTo)
}

func TestConvert_EmitsEvents(t *testing.T) {
	quote := newConvertibleQuote(t)
	quote.ClearDomainEvents()

	order, err := Convert(quote, DocumentTypeOrder, "SO-26-08-0005", uuid.New(), ConversionPolicy{})
	require.NoError(t, err)

	types := make([]string, 0)
	for _, ev := range quote.GetDomainEvents() {
		types = append(types, ev.EventType())
	}
	assert.Contains(t, types, EventStatusChanged)
	assert.Contains(t, types, EventDocumentConverted)

	require.Len(t, order.GetDomainEvents(), 1)
	assert.Equal(t, EventDocumentCreated, order.GetDomainEvents()[0].EventType())
}
