package models

import (
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the CommercialDocument aggregate root
type DocumentModel struct {
	TenantAggregateModel
	Type            document.DocumentType   `gorm:"type:varchar(20);not null;index"`
	Number          string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_documents_tenant_number,priority:2"`
	Status          document.DocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	CustomerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName    string                  `gorm:"type:varchar(200);not null"`
	CustomerCode    string                  `gorm:"type:varchar(50)"`
	CustomerTaxID   string                  `gorm:"type:varchar(50)"`
	CustomerAddress string                  `gorm:"type:text"`
	ParentID        *uuid.UUID              `gorm:"type:uuid;index"`
	ParentType      *document.DocumentType  `gorm:"type:varchar(20)"`
	ConvertedTo     *uuid.UUID              `gorm:"type:uuid;index"`
	Date            time.Time               `gorm:"not null;index"`
	DueDate         *time.Time              `gorm:"index"`
	ValidityDate    *time.Time
	DeliveryDate    *time.Time
	Currency        string              `gorm:"type:varchar(3);not null;default:'EUR'"`
	Lines           []DocumentLineModel `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE"`
	Subtotal        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	RemainingAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Overpaid        bool                `gorm:"not null;default:false"`
	Payments        document.Payments   `gorm:"type:jsonb"`
	ValidatedBy     *uuid.UUID          `gorm:"type:uuid"`
	ValidatedAt     *time.Time
	SentAt          *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain CommercialDocument
func (m *DocumentModel) ToDomain() *document.CommercialDocument {
	doc := &document.CommercialDocument{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Type:                m.Type,
		Number:              m.Number,
		Status:              m.Status,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		CustomerCode:        m.CustomerCode,
		CustomerTaxID:       m.CustomerTaxID,
		CustomerAddress:     m.CustomerAddress,
		ParentID:            m.ParentID,
		ParentType:          m.ParentType,
		ConvertedTo:         m.ConvertedTo,
		Date:                m.Date,
		DueDate:             m.DueDate,
		ValidityDate:        m.ValidityDate,
		DeliveryDate:        m.DeliveryDate,
		Currency:            valueobject.Currency(m.Currency),
		Subtotal:            m.Subtotal,
		DiscountAmount:      m.DiscountAmount,
		TaxAmount:           m.TaxAmount,
		Total:               m.Total,
		PaidAmount:          m.PaidAmount,
		RemainingAmount:     m.RemainingAmount,
		Overpaid:            m.Overpaid,
		Payments:            m.Payments,
		ValidatedBy:         m.ValidatedBy,
		ValidatedAt:         m.ValidatedAt,
		SentAt:              m.SentAt,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
		Lines:               make([]document.DocumentLine, len(m.Lines)),
	}
	if doc.Payments == nil {
		doc.Payments = document.Payments{}
	}
	for i := range m.Lines {
		doc.Lines[i] = m.Lines[i].ToDomain()
	}
	return doc
}

// FromDomain populates the persistence model from a domain CommercialDocument
func (m *DocumentModel) FromDomain(d *document.CommercialDocument) {
	m.FromDomainTenantAggregateRoot(d.TenantAggregateRoot)
	m.Type = d.Type
	m.Number = d.Number
	m.Status = d.Status
	m.CustomerID = d.CustomerID
	m.CustomerName = d.CustomerName
	m.CustomerCode = d.CustomerCode
	m.CustomerTaxID = d.CustomerTaxID
	m.CustomerAddress = d.CustomerAddress
	m.ParentID = d.ParentID
	m.ParentType = d.ParentType
	m.ConvertedTo = d.ConvertedTo
	m.Date = d.Date
	m.DueDate = d.DueDate
	m.ValidityDate = d.ValidityDate
	m.DeliveryDate = d.DeliveryDate
	m.Currency = string(d.Currency)
	m.Subtotal = d.Subtotal
	m.DiscountAmount = d.DiscountAmount
	m.TaxAmount = d.TaxAmount
	m.Total = d.Total
	m.PaidAmount = d.PaidAmount
	m.RemainingAmount = d.RemainingAmount
	m.Overpaid = d.Overpaid
	m.Payments = d.Payments
	m.ValidatedBy = d.ValidatedBy
	m.ValidatedAt = d.ValidatedAt
	m.SentAt = d.SentAt
	m.PaidAt = d.PaidAt
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason
	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i := range d.Lines {
		m.Lines[i].FromDomain(&d.Lines[i])
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain document
func DocumentModelFromDomain(d *document.CommercialDocument) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}

// DocumentLineModel is the persistence model for one document line
type DocumentLineModel struct {
	BaseModel
	DocumentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber      int             `gorm:"not null"`
	ProductRef      string          `gorm:"type:varchar(50)"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// ToDomain converts the persistence model to a domain DocumentLine
func (m *DocumentLineModel) ToDomain() document.DocumentLine {
	return document.DocumentLine{
		ID:              m.ID,
		DocumentID:      m.DocumentID,
		LineNumber:      m.LineNumber,
		ProductRef:      m.ProductRef,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		TaxRate:         m.TaxRate,
		Subtotal:        m.Subtotal,
		DiscountAmount:  m.DiscountAmount,
		TaxAmount:       m.TaxAmount,
		Total:           m.Total,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain DocumentLine
func (m *DocumentLineModel) FromDomain(l *document.DocumentLine) {
	m.ID = l.ID
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
	m.DocumentID = l.DocumentID
	m.LineNumber = l.LineNumber
	m.ProductRef = l.ProductRef
	m.Description = l.Description
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.DiscountPercent = l.DiscountPercent
	m.TaxRate = l.TaxRate
	m.Subtotal = l.Subtotal
	m.DiscountAmount = l.DiscountAmount
	m.TaxAmount = l.TaxAmount
	m.Total = l.Total
}

// NumberSequenceModel is the per-key atomic counter backing the numbering
// authority. The composite primary key is the issuance scope.
type NumberSequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocType   string    `gorm:"type:varchar(20);primaryKey;column:doc_type"`
	Period    string    `gorm:"type:varchar(7);primaryKey"`
	NextValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}

// CustomerModel is the persistence model for the customer directory
type CustomerModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Code     string    `gorm:"type:varchar(50);not null"`
	TaxID    string    `gorm:"type:varchar(50);column:tax_id"`
	Address  string    `gorm:"type:text"`
	Email    string    `gorm:"type:varchar(200)"`
	Active   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}
