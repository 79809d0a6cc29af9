package document

import (
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// CreateDocumentRequest represents a request to create a commercial document
type CreateDocumentRequest struct {
	Type         string      `json:"type" binding:"required,oneof=QUOTE ORDER INVOICE CREDIT_NOTE"`
	CustomerID   uuid.UUID   `json:"customer_id" binding:"required"`
	Currency     string      `json:"currency" binding:"omitempty,len=3"`
	Date         *time.Time  `json:"date"`
	DueDate      *time.Time  `json:"due_date"`
	ValidityDate *time.Time  `json:"validity_date"`
	Lines        []LineInput `json:"lines" binding:"omitempty,dive"`
}

// LineInput represents one line in create/add/update requests
type LineInput struct {
	ProductRef      string          `json:"product_ref" binding:"omitempty,max=50"`
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
}

// CancelDocumentRequest represents a request to cancel a document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ConvertDocumentRequest represents a request to convert a document into the
// next type in the chain
type ConvertDocumentRequest struct {
	TargetType string `json:"target_type" binding:"required,oneof=ORDER INVOICE CREDIT_NOTE"`
}

// DeliverDocumentRequest represents a request to mark an order delivered
type DeliverDocumentRequest struct {
	DeliveryDate *time.Time `json:"delivery_date"`
}

// ApplyPaymentRequest represents a request to record a payment on an invoice
type ApplyPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=BANK_TRANSFER CARD CASH CHECK DIRECT_DEBIT OTHER"`
	Date      *time.Time      `json:"date"`
	Reference string          `json:"reference" binding:"omitempty,max=100"`
}

// DocumentListFilter represents filter options for the document list
type DocumentListFilter struct {
	Search     string     `form:"search"`
	Type       string     `form:"type" binding:"omitempty,oneof=QUOTE ORDER INVOICE CREDIT_NOTE"`
	Status     string     `form:"status"`
	CustomerID *uuid.UUID `form:"customer_id"`
	ParentID   *uuid.UUID `form:"parent_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// LineResponse represents a document line in API responses
type LineResponse struct {
	ID              uuid.UUID       `json:"id"`
	LineNumber      int             `json:"line_number"`
	ProductRef      string          `json:"product_ref,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
}

// PaymentResponse represents a recorded payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// DocumentResponse represents a commercial document in API responses
type DocumentResponse struct {
	ID              uuid.UUID         `json:"id"`
	TenantID        uuid.UUID         `json:"tenant_id"`
	Type            string            `json:"type"`
	Number          string            `json:"number"`
	Status          string            `json:"status"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerCode    string            `json:"customer_code,omitempty"`
	CustomerTaxID   string            `json:"customer_tax_id,omitempty"`
	CustomerAddress string            `json:"customer_address,omitempty"`
	ParentID        *uuid.UUID        `json:"parent_id,omitempty"`
	ParentType      *string           `json:"parent_type,omitempty"`
	ConvertedTo     *uuid.UUID        `json:"converted_to,omitempty"`
	Date            time.Time         `json:"date"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	ValidityDate    *time.Time        `json:"validity_date,omitempty"`
	DeliveryDate    *time.Time        `json:"delivery_date,omitempty"`
	Currency        string            `json:"currency"`
	Lines           []LineResponse    `json:"lines"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	DiscountAmount  decimal.Decimal   `json:"discount_amount"`
	TaxAmount       decimal.Decimal   `json:"tax_amount"`
	Total           decimal.Decimal   `json:"total"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	Overpaid        bool              `json:"overpaid"`
	Payments        []PaymentResponse `json:"payments,omitempty"`
	ValidatedBy     *uuid.UUID        `json:"validated_by,omitempty"`
	ValidatedAt     *time.Time        `json:"validated_at,omitempty"`
	SentAt          *time.Time        `json:"sent_at,omitempty"`
	PaidAt          *time.Time        `json:"paid_at,omitempty"`
	CancelReason    string            `json:"cancel_reason,omitempty"`
	Version         int               `json:"version"`
	CreatedBy       *uuid.UUID        `json:"created_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// DocumentListItemResponse is the compact list representation
type DocumentListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	Number          string          `json:"number"`
	Status          string          `json:"status"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	Date            time.Time       `json:"date"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Currency        string          `json:"currency"`
	Total           decimal.Decimal `json:"total"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	LineCount       int             `json:"line_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToDocumentResponse maps a domain document to its API representation
func ToDocumentResponse(doc *document.CommercialDocument) DocumentResponse {
	lines := make([]LineResponse, 0, len(doc.Lines))
	for i := range doc.Lines {
		lines = append(lines, toLineResponse(&doc.Lines[i]))
	}

	payments := make([]PaymentResponse, 0, len(doc.Payments))
	for _, p := range doc.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			Date:      p.Date,
			Reference: p.Reference,
		})
	}

	var parentType *string
	if doc.ParentType != nil {
		s := doc.ParentType.String()
		parentType = &s
	}

	return DocumentResponse{
		ID:              doc.ID,
		TenantID:        doc.TenantID,
		Type:            doc.Type.String(),
		Number:          doc.Number,
		Status:          doc.Status.String(),
		CustomerID:      doc.CustomerID,
		CustomerName:    doc.CustomerName,
		CustomerCode:    doc.CustomerCode,
		CustomerTaxID:   doc.CustomerTaxID,
		CustomerAddress: doc.CustomerAddress,
		ParentID:        doc.ParentID,
		ParentType:      parentType,
		ConvertedTo:     doc.ConvertedTo,
		Date:            doc.Date,
		DueDate:         doc.DueDate,
		ValidityDate:    doc.ValidityDate,
		DeliveryDate:    doc.DeliveryDate,
		Currency:        string(doc.Currency),
		Lines:           lines,
		Subtotal:        doc.Subtotal,
		DiscountAmount:  doc.DiscountAmount,
		TaxAmount:       doc.TaxAmount,
		Total:           doc.Total,
		PaidAmount:      doc.PaidAmount,
		RemainingAmount: doc.RemainingAmount,
		Overpaid:        doc.Overpaid,
		Payments:        payments,
		ValidatedBy:     doc.ValidatedBy,
		ValidatedAt:     doc.ValidatedAt,
		SentAt:          doc.SentAt,
		PaidAt:          doc.PaidAt,
		CancelReason:    doc.CancelReason,
		Version:         doc.Version,
		CreatedBy:       doc.CreatedBy,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func toLineResponse(line *document.DocumentLine) LineResponse {
	return LineResponse{
		ID:              line.ID,
		LineNumber:      line.LineNumber,
		ProductRef:      line.ProductRef,
		Description:     line.Description,
		Quantity:        line.Quantity,
		UnitPrice:       line.UnitPrice,
		DiscountPercent: line.DiscountPercent,
		TaxRate:         line.TaxRate,
		Subtotal:        line.Subtotal,
		DiscountAmount:  line.DiscountAmount,
		TaxAmount:       line.TaxAmount,
		Total:           line.Total,
	}
}

// ToDocumentListItem maps a domain document to its list representation
func ToDocumentListItem(doc *document.CommercialDocument) DocumentListItemResponse {
	return DocumentListItemResponse{
		ID:              doc.ID,
		Type:            doc.Type.String(),
		Number:          doc.Number,
		Status:          doc.Status.String(),
		CustomerID:      doc.CustomerID,
		CustomerName:    doc.CustomerName,
		Date:            doc.Date,
		DueDate:         doc.DueDate,
		Currency:        string(doc.Currency),
		Total:           doc.Total,
		PaidAmount:      doc.PaidAmount,
		RemainingAmount: doc.RemainingAmount,
		LineCount:       len(doc.Lines),
		CreatedAt:       doc.CreatedAt,
	}
}
