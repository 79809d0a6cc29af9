// Package acl is the anti-corruption layer between the document engine and
// the customer directory. Documents never hold live customer entities; they
// carry an immutable snapshot taken at creation time.
package acl

import (
	"context"

	"github.com/google/uuid"
)

// CustomerReference is the point-in-time customer snapshot embedded in a
// document. Later changes in the directory never alter issued documents.
type CustomerReference struct {
	id      uuid.UUID
	name    string
	code    string
	taxID   string
	address string
}

// NewCustomerReference creates a customer snapshot
func NewCustomerReference(id uuid.UUID, name, code, taxID, address string) CustomerReference {
	return CustomerReference{
		id:      id,
		name:    name,
		code:    code,
		taxID:   taxID,
		address: address,
	}
}

// ID returns the customer ID
func (r CustomerReference) ID() uuid.UUID { return r.id }

// Name returns the customer display name
func (r CustomerReference) Name() string { return r.name }

// Code returns the customer's short code
func (r CustomerReference) Code() string { return r.code }

// TaxID returns the customer's tax identifier
func (r CustomerReference) TaxID() string { return r.taxID }

// Address returns the customer's billing address
func (r CustomerReference) Address() string { return r.address }

// IsResolved reports whether the reference points at a known customer
func (r CustomerReference) IsResolved() bool {
	return r.id != uuid.Nil && r.name != ""
}

// CustomerDirectory resolves customer snapshots for document creation.
// Implementations live in the infrastructure layer.
type CustomerDirectory interface {
	GetCustomerReference(ctx context.Context, tenantID, customerID uuid.UUID) (CustomerReference, error)
	CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
}
