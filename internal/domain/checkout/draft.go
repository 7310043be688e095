package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DraftSale is a suspended sale held by the backend until it is resumed
type DraftSale struct {
	ID        uuid.UUID
	Cart      CartState
	CreatedAt time.Time
}

// ToCart re-hydrates the draft into a cart
func (d DraftSale) ToCart() (*Cart, error) {
	return RestoreCart(d.Cart)
}

// DraftSummary is one row of the suspended-sales list
type DraftSummary struct {
	ID         uuid.UUID
	ItemCount  int
	Total      decimal.Decimal
	CustomerID *uuid.UUID
	Notes      string
	CreatedAt  time.Time
}

// CompletedSale is the payload submitted when a checkout finalizes
type CompletedSale struct {
	SessionID uuid.UUID
	Cart      CartState
	Totals    Totals
	Tenders   []Tender
	Change    decimal.Decimal
}

// SaleConfirmation is the backend acknowledgement of a completed sale
type SaleConfirmation struct {
	SaleID      uuid.UUID
	SaleNumber  string
	CompletedAt time.Time
}
