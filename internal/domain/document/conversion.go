package document

import (
	"fmt"
	"time"

	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversionRule declares one allowed document-to-document conversion: the
// target type, the source states it may start from, and how the source is
// driven afterwards.
type ConversionRule struct {
	Target       DocumentType
	SourceStates []DocumentStatus
	// SourceOperation drives the source through its own state machine after
	// a successful conversion. Empty means the source keeps its status and
	// only gains the converted_to pointer.
	SourceOperation Operation
}

// conversionRules is the allowed conversion table. Like the transition
// tables, adding a conversion happens here.
var conversionRules = map[DocumentType]ConversionRule{
	DocumentTypeQuote: {
		Target:          DocumentTypeOrder,
		SourceStates:    []DocumentStatus{StatusValidated, StatusSent},
		SourceOperation: OpAccept,
	},
	DocumentTypeOrder: {
		Target:       DocumentTypeInvoice,
		SourceStates: []DocumentStatus{StatusConfirmed, StatusDelivered},
	},
	DocumentTypeInvoice: {
		Target:       DocumentTypeCreditNote,
		SourceStates: []DocumentStatus{StatusValidated, StatusSent, StatusPartial, StatusPaid, StatusOverdue},
	},
}

// ConversionRuleFor returns the conversion rule for the source type
func ConversionRuleFor(source DocumentType) (ConversionRule, bool) {
	rule, ok := conversionRules[source]
	return rule, ok
}

// ConversionPolicy tunes conversion behavior per deployment
type ConversionPolicy struct {
	// AllowRepeatedConversion permits converting a source that already has
	// a converted_to pointer, producing multiple targets from one source.
	// Off by default: each conversion produces exactly one target.
	AllowRepeatedConversion bool
}

// CanConvert checks whether source may be converted to targetType right now:
// the conversion must be in the allowed table, the source in one of the
// rule's source states, and not already converted unless the policy permits
// fan-out. Callers use it to reject a conversion before issuing a number.
func CanConvert(source *CommercialDocument, targetType DocumentType, policy ConversionPolicy) error {
	rule, ok := conversionRules[source.Type]
	if !ok || rule.Target != targetType {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Conversion from %s to %s is not allowed", source.Type, targetType))
	}

	allowed := false
	for _, s := range rule.SourceStates {
		if s == source.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Conversion to %s is not allowed in %s status", targetType, source.Status))
	}

	if source.ConvertedTo != nil && !policy.AllowRepeatedConversion {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Document %s has already been converted", source.Number))
	}
	return nil
}

// Convert produces a new document of the next type in the chain from source.
// Lines are snapshot-copied as new, independently-owned lines and the target's
// aggregates are recomputed from scratch, never copied verbatim. The target
// carries the lineage pointer back to source; source is driven through its
// own state machine where the chain requires it (a converted quote becomes
// ACCEPTED) and gains the converted_to pointer.
//
// Convert mutates both documents in memory only. The caller persists the pair
// atomically; a numbering or persistence failure must roll back both sides.
func Convert(source *CommercialDocument, targetType DocumentType, targetNumber string, createdBy uuid.UUID, policy ConversionPolicy) (*CommercialDocument, error) {
	if err := CanConvert(source, targetType, policy); err != nil {
		return nil, err
	}

	rule := conversionRules[source.Type]

	customer := acl.NewCustomerReference(
		source.CustomerID, source.CustomerName, source.CustomerCode,
		source.CustomerTaxID, source.CustomerAddress)

	target, err := NewCommercialDocument(
		source.TenantID, createdBy, targetType, targetNumber, customer, time.Now(), source.Currency)
	if err != nil {
		return nil, err
	}

	// Lines are recomputed from their raw inputs, not copied with their
	// amounts: the target's aggregates must come out of the calculator even
	// if rounding rules ever diverge between types.
	for i := range source.Lines {
		src := &source.Lines[i]
		line, err := NewDocumentLine(target.ID, src.LineNumber, src.ProductRef, src.Description, src.Input(), target.Currency)
		if err != nil {
			return nil, err
		}
		target.Lines = append(target.Lines, *line)
	}
	target.recalculateTotals()

	parentType := source.Type
	target.ParentID = &source.ID
	target.ParentType = &parentType

	if rule.SourceOperation != "" {
		if err := source.transitionTo(rule.SourceOperation); err != nil {
			return nil, err
		}
	}
	source.MarkConverted(target.ID)
	source.AddDomainEvent(NewDocumentConvertedEvent(source, target))

	return target, nil
}
