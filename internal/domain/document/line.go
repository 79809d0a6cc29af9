package document

import (
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLine is one priced item row within a commercial document.
// LineNumber is the stable 1-based ordinal; insertion order is display order.
// Lines are mutable while the owning document is DRAFT and frozen afterwards;
// the aggregate enforces that, not the line itself.
type DocumentLine struct {
	ID              uuid.UUID
	DocumentID      uuid.UUID
	LineNumber      int
	ProductRef      string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewDocumentLine creates a new line and computes its monetary breakdown
func NewDocumentLine(documentID uuid.UUID, lineNumber int, productRef, description string, in LineInput, currency valueobject.Currency) (*DocumentLine, error) {
	if description == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidLineInput, "Description cannot be empty")
	}
	if lineNumber < 1 {
		return nil, shared.NewDomainError(shared.CodeInvalidLineInput, "Line number must be 1-based")
	}

	amounts, err := ComputeLine(in, currency)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	line := &DocumentLine{
		ID:              uuid.New(),
		DocumentID:      documentID,
		LineNumber:      lineNumber,
		ProductRef:      productRef,
		Description:     description,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPercent: in.DiscountPercent,
		TaxRate:         in.TaxRate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	line.applyAmounts(amounts)
	return line, nil
}

// Update replaces the line's pricing input and recomputes its amounts
func (l *DocumentLine) Update(productRef, description string, in LineInput, currency valueobject.Currency) error {
	if description == "" {
		return shared.NewDomainError(shared.CodeInvalidLineInput, "Description cannot be empty")
	}

	amounts, err := ComputeLine(in, currency)
	if err != nil {
		return err
	}

	l.ProductRef = productRef
	l.Description = description
	l.Quantity = in.Quantity
	l.UnitPrice = in.UnitPrice
	l.DiscountPercent = in.DiscountPercent
	l.TaxRate = in.TaxRate
	l.applyAmounts(amounts)
	l.UpdatedAt = time.Now()
	return nil
}

// Input returns the line's pricing input
func (l *DocumentLine) Input() LineInput {
	return LineInput{
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		TaxRate:         l.TaxRate,
	}
}

func (l *DocumentLine) applyAmounts(a LineAmounts) {
	l.Subtotal = a.Subtotal.Amount()
	l.DiscountAmount = a.DiscountAmount.Amount()
	l.TaxAmount = a.TaxAmount.Amount()
	l.Total = a.Total.Amount()
}
