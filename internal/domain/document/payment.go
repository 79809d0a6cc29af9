package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodDirectDebit  PaymentMethod = "DIRECT_DEBIT"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodCash,
		PaymentMethodCheck, PaymentMethodDirectDebit, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is one recorded payment against an invoice. Payments are append-only;
// corrections go through a credit note, never by editing history.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// NewPayment creates a payment record after validating amount and method
func NewPayment(amount decimal.Decimal, method PaymentMethod, date time.Time, reference string) (Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Payment{}, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if !method.IsValid() {
		return Payment{}, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid payment method %s", method))
	}
	if date.IsZero() {
		date = time.Now()
	}
	return Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Method:    method,
		Date:      date,
		Reference: reference,
	}, nil
}

// Payments is the append-only payment history of an invoice, stored as a JSON
// column on the document row.
type Payments []Payment

// TotalAmount sums all recorded payment amounts
func (p Payments) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, payment := range p {
		total = total.Add(payment.Amount)
	}
	return total
}

// Value implements driver.Valuer for database storage
func (p Payments) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Payments) Scan(value any) error {
	if value == nil {
		*p = Payments{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Payments", value)
	}

	if len(data) == 0 {
		*p = Payments{}
		return nil
	}
	return json.Unmarshal(data, p)
}
