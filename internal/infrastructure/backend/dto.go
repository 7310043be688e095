package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// productResponse is the product shape returned by the catalog endpoints
type productResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	IsActive  bool            `json:"is_active"`
}

func (p productResponse) toDomain() checkout.Product {
	return checkout.Product{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Barcode:   p.Barcode,
		UnitPrice: p.UnitPrice,
		TaxRate:   p.TaxRate,
		IsActive:  p.IsActive,
	}
}

type customerResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
}

func (c customerResponse) toDomain() checkout.Customer {
	return checkout.Customer{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
	}
}

type createCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

type sessionResponse struct {
	ID          uuid.UUID       `json:"id"`
	CashierID   uuid.UUID       `json:"cashier_id"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
	Status      string          `json:"status"`
	OpenedAt    time.Time       `json:"opened_at"`
}

func (s sessionResponse) toDomain() *checkout.Session {
	return &checkout.Session{
		ID:          s.ID,
		CashierID:   s.CashierID,
		OpeningCash: s.OpeningCash,
		Status:      checkout.SessionStatus(strings.ToUpper(s.Status)),
		OpenedAt:    s.OpenedAt,
	}
}

type openSessionRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// saleItem is one cart line on the wire
type saleItem struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"discount_amount"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

type salePayment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type completeSaleRequest struct {
	SessionID       uuid.UUID       `json:"session_id"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	Items           []saleItem      `json:"items"`
	Payments        []salePayment   `json:"payments"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	ChangeAmount    decimal.Decimal `json:"change_amount"`
	Notes           string          `json:"notes,omitempty"`
}

type saleConfirmationResponse struct {
	ID          uuid.UUID `json:"id"`
	SaleNumber  string    `json:"sale_number"`
	CompletedAt time.Time `json:"completed_at"`
}

type draftRequest struct {
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	Items           []saleItem      `json:"items"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Notes           string          `json:"notes,omitempty"`
}

type draftResponse struct {
	ID              uuid.UUID       `json:"id"`
	CustomerID      *uuid.UUID      `json:"customer_id,omitempty"`
	Items           []saleItem      `json:"items"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (d draftResponse) toDomain() *checkout.DraftSale {
	lines := make([]checkout.CartLine, 0, len(d.Items))
	for _, it := range d.Items {
		lines = append(lines, checkout.CartLine{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			SKU:          it.SKU,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			LineDiscount: it.LineDiscount,
			TaxRate:      it.TaxRate,
		})
	}
	return &checkout.DraftSale{
		ID: d.ID,
		Cart: checkout.CartState{
			Lines:               lines,
			CustomerID:          d.CustomerID,
			BillDiscountPercent: d.DiscountPercent,
			Notes:               d.Notes,
		},
		CreatedAt: d.CreatedAt,
	}
}

type draftSummaryResponse struct {
	ID         uuid.UUID       `json:"id"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (d draftSummaryResponse) toDomain() checkout.DraftSummary {
	return checkout.DraftSummary{
		ID:         d.ID,
		ItemCount:  d.ItemCount,
		Total:      d.Total,
		CustomerID: d.CustomerID,
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
	}
}

func toSaleItems(lines []checkout.CartLine) []saleItem {
	items := make([]saleItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, saleItem{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			SKU:          l.SKU,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineDiscount: l.LineDiscount,
			TaxRate:      l.TaxRate,
		})
	}
	return items
}

func toSalePayments(tenders []checkout.Tender) ([]salePayment, error) {
	payments := make([]salePayment, 0, len(tenders))
	for i, t := range tenders {
		code, err := t.Method.BackendCode()
		if err != nil {
			return nil, fmt.Errorf("tender %d (%q): %w", i, t.Method, err)
		}
		payments = append(payments, salePayment{Method: code, Amount: t.Amount})
	}
	return payments, nil
}

func newCompleteSaleRequest(sale checkout.CompletedSale) (completeSaleRequest, error) {
	if sale.SessionID == uuid.Nil {
		return completeSaleRequest{}, checkout.ErrSessionRequired
	}
	if len(sale.Cart.Lines) == 0 {
		return completeSaleRequest{}, checkout.ErrEmptyCart
	}
	payments, err := toSalePayments(sale.Tenders)
	if err != nil {
		return completeSaleRequest{}, err
	}
	if len(payments) == 0 {
		return completeSaleRequest{}, shared.NewDomainError("NO_PAYMENTS", "At least one payment is required")
	}
	totals := sale.Totals.Display()
	return completeSaleRequest{
		SessionID:       sale.SessionID,
		CustomerID:      sale.Cart.CustomerID,
		Items:           toSaleItems(sale.Cart.Lines),
		Payments:        payments,
		DiscountPercent: sale.Cart.BillDiscountPercent,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		DiscountAmount:  totals.Discount,
		Total:           totals.Total,
		ChangeAmount:    sale.Change,
		Notes:           sale.Cart.Notes,
	}, nil
}
