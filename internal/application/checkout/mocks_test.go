package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductCatalog is a mock implementation of checkout.ProductCatalog
type MockProductCatalog struct {
	mock.Mock
}

func (m *MockProductCatalog) SearchProducts(ctx context.Context, query string) ([]checkout.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.Product), args.Error(1)
}

func (m *MockProductCatalog) FindByCode(ctx context.Context, code string) (*checkout.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Product), args.Error(1)
}

// MockCustomerDirectory is a mock implementation of checkout.CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) SearchCustomers(ctx context.Context, query string) ([]checkout.Customer, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.Customer), args.Error(1)
}

func (m *MockCustomerDirectory) CreateCustomer(ctx context.Context, input checkout.NewCustomerInput) (*checkout.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Customer), args.Error(1)
}

// MockSessionService is a mock implementation of checkout.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) CurrentSession(ctx context.Context) (*checkout.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockSessionService) OpenSession(ctx context.Context, openingCash decimal.Decimal) (*checkout.Session, error) {
	args := m.Called(ctx, openingCash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

// MockSalesGateway is a mock implementation of checkout.SalesGateway
type MockSalesGateway struct {
	mock.Mock
}

func (m *MockSalesGateway) CompleteSale(ctx context.Context, sale checkout.CompletedSale, idempotencyKey string) (*checkout.SaleConfirmation, error) {
	args := m.Called(ctx, sale, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.SaleConfirmation), args.Error(1)
}

func (m *MockSalesGateway) CreateDraft(ctx context.Context, state checkout.CartState) (*checkout.DraftSale, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.DraftSale), args.Error(1)
}

func (m *MockSalesGateway) ListDrafts(ctx context.Context) ([]checkout.DraftSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]checkout.DraftSummary), args.Error(1)
}

func (m *MockSalesGateway) ResumeDraft(ctx context.Context, draftID uuid.UUID) (*checkout.DraftSale, error) {
	args := m.Called(ctx, draftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.DraftSale), args.Error(1)
}

// recordingMetrics captures business events
type recordingMetrics struct {
	mu        sync.Mutex
	completed int
	failed    []string
	lookups   []string
	suspended int
	resumed   int
	snapshots []bool
}

func (r *recordingMetrics) SaleCompleted(context.Context, decimal.Decimal, []string, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recordingMetrics) SubmissionFailed(_ context.Context, kind string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, kind)
}

func (r *recordingMetrics) BarcodeLookup(_ context.Context, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, outcome)
}

func (r *recordingMetrics) SaleSuspended(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suspended++
}

func (r *recordingMetrics) SaleResumed(context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumed++
}

func (r *recordingMetrics) SnapshotWritten(_ context.Context, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, ok)
}
