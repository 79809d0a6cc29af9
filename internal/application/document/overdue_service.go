package document

import (
	"context"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OverdueService is the sweep that flags invoices past their due date.
// It is invoked by an external caller (cron, admin endpoint); the engine
// itself never runs timer-driven state changes.
type OverdueService struct {
	repo   document.Repository
	logger *zap.Logger
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(repo document.Repository, logger *zap.Logger) *OverdueService {
	return &OverdueService{repo: repo, logger: logger}
}

// MarkOverdueInvoices marks every overdue candidate of the tenant and returns
// how many were flagged. Individual failures are logged and skipped; one
// contested invoice must not stall the rest of the sweep.
func (s *OverdueService) MarkOverdueInvoices(ctx context.Context, tenantID uuid.UUID) (int, error) {
	candidates, err := s.repo.FindOverdueCandidates(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, invoice := range candidates {
		expectedVersion := invoice.GetVersion()
		if err := invoice.MarkOverdue(); err != nil {
			s.logger.Warn("skipping overdue candidate",
				zap.String("document_id", invoice.ID.String()),
				zap.String("number", invoice.Number),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.SaveWithLock(ctx, invoice, expectedVersion); err != nil {
			s.logger.Warn("failed to persist overdue status",
				zap.String("document_id", invoice.ID.String()),
				zap.String("number", invoice.Number),
				zap.Error(err),
			)
			continue
		}
		marked++
	}

	s.logger.Info("overdue sweep completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("candidates", len(candidates)),
		zap.Int("marked", marked),
	)
	return marked, nil
}
