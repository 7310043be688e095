package checkout

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCatalog looks products up in the backend
type ProductCatalog interface {
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	// FindByCode returns ErrProductNotFound when no product has the barcode or SKU
	FindByCode(ctx context.Context, code string) (*Product, error)
}

// CustomerDirectory finds and registers customers
type CustomerDirectory interface {
	SearchCustomers(ctx context.Context, query string) ([]Customer, error)
	CreateCustomer(ctx context.Context, input NewCustomerInput) (*Customer, error)
}

// SessionService reads and opens cash-drawer sessions
type SessionService interface {
	// CurrentSession returns nil, nil when the cashier has no session
	CurrentSession(ctx context.Context) (*Session, error)
	OpenSession(ctx context.Context, openingCash decimal.Decimal) (*Session, error)
}

// SalesGateway submits completed and suspended sales
type SalesGateway interface {
	// CompleteSale must be idempotent per idempotencyKey
	CompleteSale(ctx context.Context, sale CompletedSale, idempotencyKey string) (*SaleConfirmation, error)
	CreateDraft(ctx context.Context, state CartState) (*DraftSale, error)
	ListDrafts(ctx context.Context) ([]DraftSummary, error)
	// ResumeDraft returns ErrDraftNotFound when the draft no longer exists
	ResumeDraft(ctx context.Context, draftID uuid.UUID) (*DraftSale, error)
}
