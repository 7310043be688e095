package checkout

import (
	"time"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest represents a request to open a cash-drawer session
type OpenSessionRequest struct {
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// AddItemRequest adds a product picked from the last search, or by code
type AddItemRequest struct {
	ProductID *uuid.UUID       `json:"product_id"`
	Code      string           `json:"code" binding:"max=64"`
	Quantity  *decimal.Decimal `json:"quantity"`
}

// UpdateLineRequest edits one cart line. Nil fields are left unchanged.
type UpdateLineRequest struct {
	Quantity     *decimal.Decimal `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	LineDiscount *decimal.Decimal `json:"line_discount"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

// BillDiscountRequest sets the bill-level discount percentage
type BillDiscountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

// NotesRequest sets the sale notes
type NotesRequest struct {
	Notes string `json:"notes" binding:"max=4000"`
}

// AttachCustomerRequest attaches a customer; a nil ID detaches
type AttachCustomerRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      string     `json:"phone"`
}

// CreateCustomerRequest registers a walk-in customer
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"required,max=50"`
	Email     string `json:"email" binding:"omitempty,email,max=200"`
}

// AddTenderRequest applies a payment instrument
type AddTenderRequest struct {
	Method string          `json:"method" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// ResumeDraftRequest resumes a suspended sale
type ResumeDraftRequest struct {
	DiscardCurrent bool `json:"discard_current"`
}

// ResolveRecoveryRequest answers the recovery prompt
type ResolveRecoveryRequest struct {
	Accept bool `json:"accept"`
}

// LineView is one cart line with its computed amounts
type LineView struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
}

// TotalsView is the rounded bill summary
type TotalsView struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// TenderView is one applied tender
type TenderView struct {
	Index  int             `json:"index"`
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// CheckoutView describes the open tender collection
type CheckoutView struct {
	AttemptKey  string          `json:"attempt_key"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	Change      decimal.Decimal `json:"change"`
	Tenders     []TenderView    `json:"tenders"`
	CanFinalize bool            `json:"can_finalize"`
	StartedAt   time.Time       `json:"started_at"`
}

// SessionView is the cash-drawer session gate state
type SessionView struct {
	Status      string           `json:"status"`
	ID          *uuid.UUID       `json:"id,omitempty"`
	OpeningCash *decimal.Decimal `json:"opening_cash,omitempty"`
	OpenedAt    *time.Time       `json:"opened_at,omitempty"`
}

// CustomerView is an attached or found customer
type CustomerView struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	Email    string    `json:"email,omitempty"`
}

// RecoveryView summarizes a snapshot awaiting the operator's decision
type RecoveryView struct {
	LineCount int             `json:"line_count"`
	Total     decimal.Decimal `json:"total"`
	TakenAt   time.Time       `json:"taken_at"`
}

// StateView is everything the checkout screen renders
type StateView struct {
	Lines               []LineView      `json:"lines"`
	Totals              TotalsView      `json:"totals"`
	ItemCount           int             `json:"item_count"`
	TotalQuantity       decimal.Decimal `json:"total_quantity"`
	CustomerID          *uuid.UUID      `json:"customer_id,omitempty"`
	Customer            *CustomerView   `json:"customer,omitempty"`
	BillDiscountPercent decimal.Decimal `json:"bill_discount_percent"`
	Notes               string          `json:"notes"`
	Session             SessionView     `json:"session"`
	Checkout            *CheckoutView   `json:"checkout,omitempty"`
	Submitting          bool            `json:"submitting"`
	PendingRecovery     *RecoveryView   `json:"pending_recovery,omitempty"`
	StaleSnapshot       bool            `json:"stale_snapshot,omitempty"`
	LastReceipt         *Receipt        `json:"last_receipt,omitempty"`
	Search              *SearchView     `json:"search,omitempty"`
}

// SearchView holds the latest product search
type SearchView struct {
	Query   string        `json:"query"`
	Results []ProductView `json:"results"`
}

// ReceiptLine is one printed line of a receipt
type ReceiptLine struct {
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	Amount       decimal.Decimal `json:"amount"`
}

// Receipt is the view model of a completed sale
type Receipt struct {
	SaleID      uuid.UUID       `json:"sale_id"`
	SaleNumber  string          `json:"sale_number"`
	CompletedAt time.Time       `json:"completed_at"`
	TerminalID  string          `json:"terminal_id"`
	SessionID   uuid.UUID       `json:"session_id"`
	CashierID   uuid.UUID       `json:"cashier_id"`
	Customer    *CustomerView   `json:"customer,omitempty"`
	Lines       []ReceiptLine   `json:"lines"`
	Totals      TotalsView      `json:"totals"`
	Tenders     []TenderView    `json:"tenders"`
	Paid        decimal.Decimal `json:"paid"`
	Change      decimal.Decimal `json:"change"`
	Notes       string          `json:"notes,omitempty"`

	// SnapshotRetained is set when the sale's recovery snapshot could not be removed
	SnapshotRetained bool `json:"snapshot_retained,omitempty"`
}

// DraftView is one row of the suspended-sales list
type DraftView struct {
	ID         uuid.UUID       `json:"id"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProductView is a search result
type ProductView struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Barcode   string          `json:"barcode"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	IsActive  bool            `json:"is_active"`
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(checkout.DisplayPlaces)
}

// ToTotalsView rounds totals for display
func ToTotalsView(t checkout.Totals) TotalsView {
	d := t.Display()
	return TotalsView{Subtotal: d.Subtotal, Tax: d.Tax, Discount: d.Discount, Total: d.Total}
}

// ToLineView converts a cart line
func ToLineView(l checkout.CartLine) LineView {
	amounts := checkout.ComputeLine(l)
	return LineView{
		ProductID:    l.ProductID,
		ProductName:  l.ProductName,
		SKU:          l.SKU,
		Quantity:     l.Quantity,
		UnitPrice:    l.UnitPrice,
		LineDiscount: l.LineDiscount,
		TaxRate:      l.TaxRate,
		Subtotal:     round(amounts.Subtotal),
		Tax:          round(amounts.Tax),
	}
}

// ToTenderViews converts tenders, keeping their positions
func ToTenderViews(tenders []checkout.Tender) []TenderView {
	views := make([]TenderView, len(tenders))
	for i, t := range tenders {
		views[i] = TenderView{Index: i, Method: t.Method.String(), Amount: round(t.Amount)}
	}
	return views
}

// ToCustomerView converts a customer
func ToCustomerView(c *checkout.Customer) *CustomerView {
	if c == nil {
		return nil
	}
	return &CustomerView{ID: c.ID, FullName: c.FullName(), Phone: c.Phone, Email: c.Email}
}

// ToCustomerViews converts customer search results
func ToCustomerViews(customers []checkout.Customer) []CustomerView {
	views := make([]CustomerView, len(customers))
	for i := range customers {
		views[i] = *ToCustomerView(&customers[i])
	}
	return views
}

// ToProductViews converts product search results
func ToProductViews(products []checkout.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{
			ID:        p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			Barcode:   p.Barcode,
			UnitPrice: p.UnitPrice,
			TaxRate:   p.TaxRate,
			IsActive:  p.IsActive,
		}
	}
	return views
}

// ToDraftViews converts draft summaries
func ToDraftViews(drafts []checkout.DraftSummary) []DraftView {
	views := make([]DraftView, len(drafts))
	for i, d := range drafts {
		views[i] = DraftView{
			ID:         d.ID,
			ItemCount:  d.ItemCount,
			Total:      round(d.Total),
			CustomerID: d.CustomerID,
			Notes:      d.Notes,
			CreatedAt:  d.CreatedAt,
		}
	}
	return views
}

func toSessionView(gate *checkout.SessionGate) SessionView {
	view := SessionView{Status: gate.Status().String()}
	if s := gate.Current(); s != nil {
		view.ID = &s.ID
		view.OpeningCash = &s.OpeningCash
		view.OpenedAt = &s.OpenedAt
	}
	return view
}

func toRecoveryView(s *checkout.RecoverySnapshot) *RecoveryView {
	if s == nil {
		return nil
	}
	return &RecoveryView{
		LineCount: len(s.Lines),
		Total:     ToTotalsView(checkout.ComputeStateTotals(s.CartState)).Total,
		TakenAt:   s.Timestamp,
	}
}

func newReceipt(
	conf *checkout.SaleConfirmation,
	sale checkout.CompletedSale,
	session *checkout.Session,
	customer *checkout.Customer,
	terminalID string,
	paid decimal.Decimal,
) *Receipt {
	lines := make([]ReceiptLine, 0, len(sale.Cart.Lines))
	for _, l := range sale.Cart.Lines {
		amounts := checkout.ComputeLine(l)
		lines = append(lines, ReceiptLine{
			ProductName:  l.ProductName,
			SKU:          l.SKU,
			Quantity:     l.Quantity,
			UnitPrice:    round(l.UnitPrice),
			LineDiscount: round(l.LineDiscount),
			Amount:       round(amounts.Subtotal),
		})
	}

	receipt := &Receipt{
		SaleID:      conf.SaleID,
		SaleNumber:  conf.SaleNumber,
		CompletedAt: conf.CompletedAt,
		TerminalID:  terminalID,
		SessionID:   sale.SessionID,
		Customer:    ToCustomerView(customer),
		Lines:       lines,
		Totals:      ToTotalsView(sale.Totals),
		Tenders:     ToTenderViews(sale.Tenders),
		Paid:        round(paid),
		Change:      round(sale.Change),
		Notes:       sale.Cart.Notes,
	}
	if session != nil {
		receipt.CashierID = session.CashierID
	}
	return receipt
}
