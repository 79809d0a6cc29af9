package document

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/domain/document/acl"
	"github.com/docflow/backend/internal/domain/shared"
	"github.com/docflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDocumentRepository is a mock implementation of document.Repository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.CommercialDocument, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CommercialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*document.CommercialDocument, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.CommercialDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*document.CommercialDocument, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.CommercialDocument), args.Error(1)
}

func (m *MockDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) FindOverdueCandidates(ctx context.Context, tenantID uuid.UUID) ([]*document.CommercialDocument, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.CommercialDocument), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.CommercialDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *document.CommercialDocument, expectedVersion int) error {
	args := m.Called(ctx, doc, expectedVersion)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveConversion(ctx context.Context, source *document.CommercialDocument, sourceExpectedVersion int, target *document.CommercialDocument) error {
	args := m.Called(ctx, source, sourceExpectedVersion, target)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockCustomerDirectory is a mock implementation of acl.CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) GetCustomerReference(ctx context.Context, tenantID, customerID uuid.UUID) (acl.CustomerReference, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(acl.CustomerReference), args.Error(1)
}

func (m *MockCustomerDirectory) CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Bool(0), args.Error(1)
}

// memorySequenceRepo is an in-memory document.NumberSequenceRepository
type memorySequenceRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newMemorySequenceRepo() *memorySequenceRepo {
	return &memorySequenceRepo{seqs: make(map[string]int64)}
}

func (r *memorySequenceRepo) Next(_ context.Context, tenantID uuid.UUID, docType document.DocumentType, period document.Period) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s|%s|%s", tenantID, docType, period)
	r.seqs[key]++
	return r.seqs[key], nil
}

func (r *memorySequenceRepo) issued() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, v := range r.seqs {
		total += int(v)
	}
	return total
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testReference(customerID uuid.UUID) acl.CustomerReference {
	return acl.NewCustomerReference(customerID, "Acme Corp", "ACME", "FR12345678901", "1 Rue de la Paix, Paris")
}

func newServiceUnderTest(repo *MockDocumentRepository, directory *MockCustomerDirectory, seqs *memorySequenceRepo) *DocumentService {
	scope := NewNoOpTransactionScope(repo, seqs)
	return NewDocumentService(repo, directory, scope)
}

func validatedInvoice(t *testing.T, tenantID uuid.UUID, total string) *document.CommercialDocument {
	t.Helper()
	customerID := uuid.New()
	doc, err := document.NewCommercialDocument(tenantID, uuid.New(), document.DocumentTypeInvoice,
		"IN-26-08-0001", testReference(customerID), time.Now(), valueobject.EUR)
	require.NoError(t, err)
	_, err = doc.AddLine("", "Service", document.LineInput{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: dec(total),
	})
	require.NoError(t, err)
	require.NoError(t, doc.Validate(uuid.New()))
	doc.ClearDomainEvents()
	return doc
}

func TestDocumentService_Create(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	seqs := newMemorySequenceRepo()
	service := newServiceUnderTest(repo, directory, seqs)

	tenantID := uuid.New()
	userID := uuid.New()
	customerID := uuid.New()

	directory.On("GetCustomerReference", mock.Anything, tenantID, customerID).
		Return(testReference(customerID), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*document.CommercialDocument")).
		Return(nil)

	resp, err := service.Create(context.Background(), tenantID, userID, CreateDocumentRequest{
		Type:       "QUOTE",
		CustomerID: customerID,
		Lines: []LineInput{
			{Description: "Widget", Quantity: dec("2"), UnitPrice: dec("100"), DiscountPercent: dec("10"), TaxRate: dec("20")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, "QUOTE", resp.Type)
	assert.Regexp(t, `^QT-\d{2}-\d{2}-0001$`, resp.Number)
	assert.Equal(t, "Acme Corp", resp.CustomerName)
	assert.True(t, resp.Total.Equal(dec("216")))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].LineNumber)
	repo.AssertExpectations(t)
	directory.AssertExpectations(t)
}

func TestDocumentService_Create_UnresolvedCustomer(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()
	customerID := uuid.New()
	directory.On("GetCustomerReference", mock.Anything, tenantID, customerID).
		Return(acl.CustomerReference{}, shared.ErrNotFound)

	_, err := service.Create(context.Background(), tenantID, uuid.New(), CreateDocumentRequest{
		Type:       "QUOTE",
		CustomerID: customerID,
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDocumentService_Create_BadLine(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()
	customerID := uuid.New()
	directory.On("GetCustomerReference", mock.Anything, tenantID, customerID).
		Return(testReference(customerID), nil)

	_, err := service.Create(context.Background(), tenantID, uuid.New(), CreateDocumentRequest{
		Type:       "ORDER",
		CustomerID: customerID,
		Lines: []LineInput{
			{Description: "Bad", Quantity: decimal.Zero, UnitPrice: dec("10")},
		},
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidLineInput, domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDocumentService_Validate(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()
	doc, err := document.NewCommercialDocument(tenantID, uuid.New(), document.DocumentTypeQuote,
		"QT-26-08-0001", testReference(uuid.New()), time.Now(), valueobject.EUR)
	require.NoError(t, err)
	_, err = doc.AddLine("", "Widget", document.LineInput{Quantity: dec("1"), UnitPrice: dec("100")})
	require.NoError(t, err)

	repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(doc, nil)
	repo.On("SaveWithLock", mock.Anything, doc, 1).Return(nil)

	resp, err := service.Validate(context.Background(), tenantID, doc.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "VALIDATED", resp.Status)
	assert.NotNil(t, resp.ValidatedAt)
	repo.AssertExpectations(t)
}

func TestDocumentService_Validate_ConcurrentModification(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()
	doc, err := document.NewCommercialDocument(tenantID, uuid.New(), document.DocumentTypeQuote,
		"QT-26-08-0001", testReference(uuid.New()), time.Now(), valueobject.EUR)
	require.NoError(t, err)
	_, err = doc.AddLine("", "Widget", document.LineInput{Quantity: dec("1"), UnitPrice: dec("100")})
	require.NoError(t, err)

	repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(doc, nil)
	repo.On("SaveWithLock", mock.Anything, doc, 1).Return(shared.ErrConcurrencyConflict)

	_, err = service.Validate(context.Background(), tenantID, doc.ID, uuid.New())
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeConcurrentModification, domainErr.Code)
}

func TestDocumentService_Delete(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()

	t.Run("draft is deletable", func(t *testing.T) {
		doc, err := document.NewCommercialDocument(tenantID, uuid.New(), document.DocumentTypeQuote,
			"QT-26-08-0002", testReference(uuid.New()), time.Now(), valueobject.EUR)
		require.NoError(t, err)

		repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(doc, nil)
		repo.On("DeleteForTenant", mock.Anything, tenantID, doc.ID).Return(nil)

		require.NoError(t, service.Delete(context.Background(), tenantID, doc.ID))
	})

	t.Run("validated is not", func(t *testing.T) {
		doc := validatedInvoice(t, tenantID, "100")
		repo.On("FindByIDForTenant", mock.Anything, tenantID, doc.ID).Return(doc, nil)

		err := service.Delete(context.Background(), tenantID, doc.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeDeleteNotAllowed, domainErr.Code)
		repo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, tenantID, doc.ID)
	})
}

func TestDocumentService_List(t *testing.T) {
	repo := new(MockDocumentRepository)
	directory := new(MockCustomerDirectory)
	service := newServiceUnderTest(repo, directory, newMemorySequenceRepo())

	tenantID := uuid.New()
	doc := validatedInvoice(t, tenantID, "100")

	repo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["type"] == "INVOICE" && f.Page == 1 && f.PageSize == 20
	})).Return([]*document.CommercialDocument{doc}, nil)
	repo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), tenantID, DocumentListFilter{Type: "INVOICE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, doc.Number, items[0].Number)
	assert.Equal(t, 1, items[0].LineCount)
}
