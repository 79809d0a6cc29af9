package document

import (
	"fmt"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineInput is the raw pricing input of one document line
type LineInput struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
}

// LineAmounts is the monetary breakdown of one line, rounded to the
// currency's minor unit.
type LineAmounts struct {
	Subtotal       valueobject.Money
	DiscountAmount valueobject.Money
	TaxableBase    valueobject.Money
	TaxAmount      valueobject.Money
	Total          valueobject.Money
}

// DocumentTotals is the aggregate monetary breakdown of a document
type DocumentTotals struct {
	Subtotal       valueobject.Money
	DiscountAmount valueobject.Money
	TaxAmount      valueobject.Money
	Total          valueobject.Money
}

var hundred = decimal.NewFromInt(100)

// ValidateLineInput checks the input domain: quantity > 0, unit price >= 0,
// discount within [0,100], tax rate >= 0.
func ValidateLineInput(in LineInput) error {
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeInvalidLineInput, "Quantity must be positive")
	}
	if in.UnitPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidLineInput, "Unit price cannot be negative")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidLineInput,
			fmt.Sprintf("Discount percent must be within [0,100], got %s", in.DiscountPercent))
	}
	if in.TaxRate.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidLineInput, "Tax rate cannot be negative")
	}
	return nil
}

// ComputeLine turns a line's quantity/price/discount/tax into its monetary
// breakdown. All arithmetic is decimal; each monetary amount is rounded
// half-up to the currency's minor unit exactly once, and the derived values
// (taxable base, total) are built from the already-rounded components so that
// total == subtotal - discount + tax holds exactly.
func ComputeLine(in LineInput, currency valueobject.Currency) (LineAmounts, error) {
	if err := ValidateLineInput(in); err != nil {
		return LineAmounts{}, err
	}

	subtotal := moneyIn(in.Quantity.Mul(in.UnitPrice), currency).RoundMinorUnit()

	discount := subtotal.CalculatePercentage(in.DiscountPercent).RoundMinorUnit()
	taxableBase := subtotal.MustSubtract(discount)
	tax := taxableBase.CalculatePercentage(in.TaxRate).RoundMinorUnit()
	total := taxableBase.MustAdd(tax)

	return LineAmounts{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableBase:    taxableBase,
		TaxAmount:      tax,
		Total:          total,
	}, nil
}

// ComputeDocumentTotals sums per-line results. Tax is aggregated by summing
// line tax amounts, not by re-taxing the document subtotal, so mixed tax
// rates on one document stay exact.
func ComputeDocumentTotals(lines []DocumentLine, currency valueobject.Currency) DocumentTotals {
	subtotal := valueobject.Zero(currency)
	discount := valueobject.Zero(currency)
	tax := valueobject.Zero(currency)
	total := valueobject.Zero(currency)

	for i := range lines {
		l := &lines[i]
		subtotal = subtotal.MustAdd(moneyIn(l.Subtotal, currency))
		discount = discount.MustAdd(moneyIn(l.DiscountAmount, currency))
		tax = tax.MustAdd(moneyIn(l.TaxAmount, currency))
		total = total.MustAdd(moneyIn(l.Total, currency))
	}

	return DocumentTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
	}
}

func moneyIn(amount decimal.Decimal, currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(amount, currency)
	return m
}
