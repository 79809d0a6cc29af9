package document

import (
	"fmt"

	"github.com/docflow/backend/internal/domain/shared"
)

// DocumentType identifies the kind of commercial document
type DocumentType string

const (
	DocumentTypeQuote      DocumentType = "QUOTE"
	DocumentTypeOrder      DocumentType = "ORDER"
	DocumentTypeInvoice    DocumentType = "INVOICE"
	DocumentTypeCreditNote DocumentType = "CREDIT_NOTE"
)

// IsValid checks if the type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeQuote, DocumentTypeOrder, DocumentTypeInvoice, DocumentTypeCreditNote:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// Prefix returns the fixed reference prefix for the type. External reporting
// depends on these values; they must never change.
func (t DocumentType) Prefix() string {
	switch t {
	case DocumentTypeQuote:
		return "QT"
	case DocumentTypeOrder:
		return "SO"
	case DocumentTypeInvoice:
		return "IN"
	case DocumentTypeCreditNote:
		return "CN"
	}
	return ""
}

// DocumentStatus is a type-scoped status value. Each DocumentType uses its own
// subset of these constants; the transition tables below define which.
type DocumentStatus string

const (
	StatusDraft      DocumentStatus = "DRAFT"
	StatusValidated  DocumentStatus = "VALIDATED"
	StatusSent       DocumentStatus = "SENT"
	StatusAccepted   DocumentStatus = "ACCEPTED"
	StatusRejected   DocumentStatus = "REJECTED"
	StatusExpired    DocumentStatus = "EXPIRED"
	StatusConfirmed  DocumentStatus = "CONFIRMED"
	StatusInProgress DocumentStatus = "IN_PROGRESS"
	StatusDelivered  DocumentStatus = "DELIVERED"
	StatusPartial    DocumentStatus = "PARTIAL"
	StatusPaid       DocumentStatus = "PAID"
	StatusOverdue    DocumentStatus = "OVERDUE"
	StatusApplied    DocumentStatus = "APPLIED"
	StatusCancelled  DocumentStatus = "CANCELLED"
)

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// Operation is a named lifecycle transition. Status is never written
// free-form; every change goes through one of these operations.
type Operation string

const (
	OpValidate     Operation = "validate"
	OpSend         Operation = "send"
	OpAccept       Operation = "accept"
	OpReject       Operation = "reject"
	OpExpire       Operation = "expire"
	OpConfirm      Operation = "confirm"
	OpMarkProgress Operation = "mark-in-progress"
	OpDeliver      Operation = "deliver"
	OpMarkPartial  Operation = "mark-partial"
	OpMarkPaid     Operation = "mark-paid"
	OpMarkOverdue  Operation = "mark-overdue"
	OpApply        Operation = "apply"
	OpCancel       Operation = "cancel"
)

// transition declares the legal source states and the resulting state for one
// operation on one document type.
type transition struct {
	sources []DocumentStatus
	target  DocumentStatus
}

// transitionTables is the per-type transition table. Adding a state or an
// operation happens here, not in scattered conditionals.
var transitionTables = map[DocumentType]map[Operation]transition{
	DocumentTypeQuote: {
		OpValidate: {sources: []DocumentStatus{StatusDraft}, target: StatusValidated},
		OpSend:     {sources: []DocumentStatus{StatusValidated}, target: StatusSent},
		OpAccept:   {sources: []DocumentStatus{StatusValidated, StatusSent}, target: StatusAccepted},
		OpReject:   {sources: []DocumentStatus{StatusValidated, StatusSent}, target: StatusRejected},
		OpExpire:   {sources: []DocumentStatus{StatusValidated, StatusSent}, target: StatusExpired},
		OpCancel:   {sources: []DocumentStatus{StatusDraft, StatusValidated, StatusSent}, target: StatusCancelled},
	},
	DocumentTypeOrder: {
		OpValidate:     {sources: []DocumentStatus{StatusDraft}, target: StatusValidated},
		OpConfirm:      {sources: []DocumentStatus{StatusValidated}, target: StatusConfirmed},
		OpMarkProgress: {sources: []DocumentStatus{StatusConfirmed}, target: StatusInProgress},
		OpDeliver:      {sources: []DocumentStatus{StatusConfirmed, StatusInProgress}, target: StatusDelivered},
		OpCancel:       {sources: []DocumentStatus{StatusDraft, StatusValidated, StatusConfirmed, StatusInProgress}, target: StatusCancelled},
	},
	DocumentTypeInvoice: {
		OpValidate:    {sources: []DocumentStatus{StatusDraft}, target: StatusValidated},
		OpSend:        {sources: []DocumentStatus{StatusValidated}, target: StatusSent},
		OpMarkPartial: {sources: []DocumentStatus{StatusValidated, StatusSent, StatusPartial, StatusOverdue}, target: StatusPartial},
		OpMarkPaid:    {sources: []DocumentStatus{StatusValidated, StatusSent, StatusPartial, StatusOverdue}, target: StatusPaid},
		OpMarkOverdue: {sources: []DocumentStatus{StatusSent, StatusPartial}, target: StatusOverdue},
		OpCancel:      {sources: []DocumentStatus{StatusDraft, StatusValidated, StatusSent, StatusPartial, StatusOverdue}, target: StatusCancelled},
	},
	DocumentTypeCreditNote: {
		OpValidate: {sources: []DocumentStatus{StatusDraft}, target: StatusValidated},
		OpApply:    {sources: []DocumentStatus{StatusValidated}, target: StatusApplied},
		OpCancel:   {sources: []DocumentStatus{StatusDraft, StatusValidated}, target: StatusCancelled},
	},
}

// terminalStates lists, per type, the states from which no operation departs.
var terminalStates = map[DocumentType][]DocumentStatus{
	DocumentTypeQuote:      {StatusAccepted, StatusRejected, StatusExpired, StatusCancelled},
	DocumentTypeOrder:      {StatusDelivered, StatusCancelled},
	DocumentTypeInvoice:    {StatusPaid, StatusCancelled},
	DocumentTypeCreditNote: {StatusApplied, StatusCancelled},
}

// States returns all states a document type can be in
func (t DocumentType) States() []DocumentStatus {
	seen := map[DocumentStatus]bool{StatusDraft: true}
	states := []DocumentStatus{StatusDraft}
	for _, tr := range transitionTables[t] {
		if !seen[tr.target] {
			seen[tr.target] = true
			states = append(states, tr.target)
		}
	}
	return states
}

// IsTerminal reports whether the status is terminal for the type
func (t DocumentType) IsTerminal(s DocumentStatus) bool {
	for _, ts := range terminalStates[t] {
		if ts == s {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether the status belongs to the type's state set
func (t DocumentType) IsValidStatus(s DocumentStatus) bool {
	for _, st := range t.States() {
		if st == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether op is legal for the type from the given state
func CanTransition(t DocumentType, op Operation, from DocumentStatus) bool {
	_, err := NextStatus(t, op, from)
	return err == nil
}

// NextStatus resolves the target status for op from the given state. Any
// operation attempted from a state outside its declared source set fails with
// INVALID_TRANSITION and carries the offending state and operation; this is
// the primary defensive contract of the engine.
func NextStatus(t DocumentType, op Operation, from DocumentStatus) (DocumentStatus, error) {
	table, ok := transitionTables[t]
	if !ok {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown document type %s", t))
	}
	tr, ok := table[op]
	if !ok {
		return "", NewInvalidTransitionError(from, op)
	}
	for _, src := range tr.sources {
		if src == from {
			return tr.target, nil
		}
	}
	return "", NewInvalidTransitionError(from, op)
}

// NewInvalidTransitionError builds the canonical INVALID_TRANSITION error
func NewInvalidTransitionError(from DocumentStatus, op Operation) *shared.DomainError {
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Operation %s is not allowed in %s status", op, from))
}
