package document

import (
	"context"
	"testing"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOverdueService_MarkOverdueInvoices(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewOverdueService(repo, zap.NewNop())

	tenantID := uuid.New()

	sent := validatedInvoice(t, tenantID, "100")
	require.NoError(t, sent.Send())
	sent.ClearDomainEvents()

	// A candidate that can no longer transition is skipped, not fatal
	stillDraft, err := document.NewCommercialDocument(tenantID, uuid.New(), document.DocumentTypeInvoice,
		"IN-26-08-0009", testReference(uuid.New()), sent.Date, sent.Currency)
	require.NoError(t, err)

	repo.On("FindOverdueCandidates", mock.Anything, tenantID).
		Return([]*document.CommercialDocument{sent, stillDraft}, nil)
	repo.On("SaveWithLock", mock.Anything, sent, 1).Return(nil)

	marked, err := service.MarkOverdueInvoices(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, document.StatusOverdue, sent.Status)
	assert.Equal(t, document.StatusDraft, stillDraft.Status)
	repo.AssertExpectations(t)
}

func TestOverdueService_EmptySweep(t *testing.T) {
	repo := new(MockDocumentRepository)
	service := NewOverdueService(repo, zap.NewNop())

	tenantID := uuid.New()
	repo.On("FindOverdueCandidates", mock.Anything, tenantID).
		Return([]*document.CommercialDocument{}, nil)

	marked, err := service.MarkOverdueInvoices(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}
