package checkout

import (
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxNotesLength is the maximum number of characters accepted for sale notes
const MaxNotesLength = 1000

// CartLine represents one product in the sale in progress
type CartLine struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	TaxRate      decimal.Decimal `json:"tax_rate"` // percent
}

// validate checks the invariants of a single line
func (l CartLine) validate() error {
	if l.ProductID == uuid.Nil {
		return ErrInvalidProduct
	}
	if !l.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if l.LineDiscount.IsNegative() {
		return ErrInvalidDiscount
	}
	if !validPercent(l.TaxRate) {
		return ErrInvalidTaxRate
	}
	return nil
}

// CartState is the serializable content of a cart.
// Drafts and recovery snapshots both carry exactly these fields.
type CartState struct {
	Lines               []CartLine      `json:"lines"`
	CustomerID          *uuid.UUID      `json:"customer_id,omitempty"`
	BillDiscountPercent decimal.Decimal `json:"bill_discount_percent"`
	Notes               string          `json:"notes"`
}

// Cart is the mutable model of the sale in progress.
// Lines are keyed by product and kept in insertion order.
type Cart struct {
	lines               []CartLine
	customerID          *uuid.UUID
	billDiscountPercent decimal.Decimal
	notes               string
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{
		lines:               make([]CartLine, 0),
		billDiscountPercent: decimal.Zero,
	}
}

// RestoreCart rebuilds a cart from a serialized state, validating every line
func RestoreCart(state CartState) (*Cart, error) {
	cart := NewCart()
	seen := make(map[uuid.UUID]bool, len(state.Lines))
	for _, line := range state.Lines {
		if err := line.validate(); err != nil {
			return nil, err
		}
		if seen[line.ProductID] {
			// duplicate keys collapse into one line, as re-adding would
			idx := cart.indexOf(line.ProductID)
			cart.lines[idx].Quantity = cart.lines[idx].Quantity.Add(line.Quantity)
			continue
		}
		seen[line.ProductID] = true
		cart.lines = append(cart.lines, line)
	}
	if err := cart.SetBillDiscount(state.BillDiscountPercent); err != nil {
		return nil, err
	}
	if err := cart.SetNotes(state.Notes); err != nil {
		return nil, err
	}
	cart.SetCustomer(state.CustomerID)
	return cart, nil
}

// AddOrIncrement adds a product line, or increments the quantity when the
// product is already in the cart. Returns a copy of the resulting line.
func (c *Cart) AddOrIncrement(product Product, quantity decimal.Decimal) (CartLine, error) {
	if product.ID == uuid.Nil {
		return CartLine{}, ErrInvalidProduct
	}
	if !product.IsActive {
		return CartLine{}, ErrProductInactive
	}
	if !quantity.IsPositive() {
		return CartLine{}, ErrInvalidQuantity
	}

	if idx := c.indexOf(product.ID); idx >= 0 {
		c.lines[idx].Quantity = c.lines[idx].Quantity.Add(quantity)
		return c.lines[idx], nil
	}

	line := CartLine{
		ProductID:    product.ID,
		ProductName:  product.Name,
		SKU:          product.SKU,
		Quantity:     quantity,
		UnitPrice:    product.UnitPrice,
		LineDiscount: decimal.Zero,
		TaxRate:      product.TaxRate,
	}
	if err := line.validate(); err != nil {
		return CartLine{}, err
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// SetQuantity sets a line quantity; zero or negative removes the line
func (c *Cart) SetQuantity(productID uuid.UUID, quantity decimal.Decimal) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	if !quantity.IsPositive() {
		c.removeAt(idx)
		return nil
	}
	c.lines[idx].Quantity = quantity
	return nil
}

// SetUnitPrice overrides the unit price of a line
func (c *Cart) SetUnitPrice(productID uuid.UUID, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines[idx].UnitPrice = price
	return nil
}

// SetLineDiscount sets the absolute discount amount of a line
func (c *Cart) SetLineDiscount(productID uuid.UUID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidDiscount
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines[idx].LineDiscount = amount
	return nil
}

// SetLineTaxRate overrides the tax rate (percent) of a line
func (c *Cart) SetLineTaxRate(productID uuid.UUID, rate decimal.Decimal) error {
	if !validPercent(rate) {
		return ErrInvalidTaxRate
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.lines[idx].TaxRate = rate
	return nil
}

// RemoveLine removes a line explicitly
func (c *Cart) RemoveLine(productID uuid.UUID) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrLineNotFound
	}
	c.removeAt(idx)
	return nil
}

// SetBillDiscount sets the bill-level discount percentage
func (c *Cart) SetBillDiscount(percent decimal.Decimal) error {
	if !validPercent(percent) {
		return ErrInvalidBillDiscount
	}
	c.billDiscountPercent = percent
	return nil
}

// SetCustomer attaches a customer; nil detaches
func (c *Cart) SetCustomer(customerID *uuid.UUID) {
	if customerID == nil || *customerID == uuid.Nil {
		c.customerID = nil
		return
	}
	id := *customerID
	c.customerID = &id
}

// SetNotes sets the free-text sale notes
func (c *Cart) SetNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	c.notes = notes
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.lines = make([]CartLine, 0)
	c.customerID = nil
	c.billDiscountPercent = decimal.Zero
	c.notes = ""
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Line returns the line for a product
func (c *Cart) Line(productID uuid.UUID) (CartLine, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return CartLine{}, false
	}
	return c.lines[idx], true
}

// LineCount returns the number of distinct lines
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalQuantity returns the sum of all line quantities
func (c *Cart) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// CustomerID returns the attached customer, if any
func (c *Cart) CustomerID() *uuid.UUID {
	if c.customerID == nil {
		return nil
	}
	id := *c.customerID
	return &id
}

// BillDiscountPercent returns the bill-level discount percentage
func (c *Cart) BillDiscountPercent() decimal.Decimal {
	return c.billDiscountPercent
}

// Notes returns the sale notes
func (c *Cart) Notes() string {
	return c.notes
}

// Totals computes the derived totals of the cart
func (c *Cart) Totals() Totals {
	return ComputeTotals(c)
}

// State returns a deep copy of the cart content
func (c *Cart) State() CartState {
	return CartState{
		Lines:               c.Lines(),
		CustomerID:          c.CustomerID(),
		BillDiscountPercent: c.billDiscountPercent,
		Notes:               c.notes,
	}
}

// Clone returns an independent copy of the cart
func (c *Cart) Clone() *Cart {
	return &Cart{
		lines:               c.Lines(),
		customerID:          c.CustomerID(),
		billDiscountPercent: c.billDiscountPercent,
		notes:               c.notes,
	}
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for idx := range c.lines {
		if c.lines[idx].ProductID == productID {
			return idx
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
}
