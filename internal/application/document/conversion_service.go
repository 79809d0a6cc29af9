package document

import (
	"context"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConversionResult carries both sides of a completed conversion
type ConversionResult struct {
	Source DocumentResponse `json:"source"`
	Target DocumentResponse `json:"target"`
}

// ConversionService runs the document conversion pipeline. The whole
// conversion (number issuance, target creation, source state change) commits
// as one transaction; any failure rolls back both sides.
type ConversionService struct {
	scope          TransactionScope
	policy         document.ConversionPolicy
	eventPublisher shared.EventPublisher
}

// NewConversionService creates a new ConversionService
func NewConversionService(scope TransactionScope, policy document.ConversionPolicy) *ConversionService {
	return &ConversionService{
		scope:  scope,
		policy: policy,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ConversionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Convert converts the source document into a new document of targetType.
// The source is re-read inside the transaction and written back with an
// optimistic version check, so two simultaneous conversions of one document
// cannot both succeed and consume two numbers for one logical transition.
func (s *ConversionService) Convert(ctx context.Context, tenantID, sourceID, userID uuid.UUID, req ConvertDocumentRequest) (*ConversionResult, error) {
	targetType := document.DocumentType(req.TargetType)

	var source, target *document.CommercialDocument
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.DocumentRepo()

		var err error
		source, err = repo.FindByIDForTenant(ctx, tenantID, sourceID)
		if err != nil {
			return err
		}
		expectedVersion := source.GetVersion()

		// Reject before issuing a number; an impossible conversion must not
		// consume a sequence value.
		if err := document.CanConvert(source, targetType, s.policy); err != nil {
			return err
		}

		authority := document.NewNumberingAuthority(repos.SequenceRepo())
		number, err := authority.NextNumber(ctx, tenantID, targetType, document.PeriodOf(time.Now()))
		if err != nil {
			return err
		}

		target, err = document.Convert(source, targetType, number, userID, s.policy)
		if err != nil {
			return err
		}

		return repo.SaveConversion(ctx, source, expectedVersion, target)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, source, target)
	return &ConversionResult{
		Source: ToDocumentResponse(source),
		Target: ToDocumentResponse(target),
	}, nil
}

func (s *ConversionService) publishEvents(ctx context.Context, docs ...*document.CommercialDocument) {
	if s.eventPublisher == nil {
		return
	}
	for _, doc := range docs {
		events := doc.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = s.eventPublisher.Publish(ctx, events...)
		doc.ClearDomainEvents()
	}
}
