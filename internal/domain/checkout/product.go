package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the sellable item as reported by the product catalog
type Product struct {
	ID        uuid.UUID
	Name      string
	SKU       string
	Barcode   string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percent, 0..100
	IsActive  bool
}

// Customer is the subset of a customer record the checkout screen needs
type Customer struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// FullName returns "First Last"
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// NewCustomerInput carries the minimal fields needed to register a walk-in customer
type NewCustomerInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// Validate trims the input and checks required fields
func (in *NewCustomerInput) Validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.LastName == "" || in.Phone == "" {
		return ErrInvalidCustomer
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

// validPercent reports whether p is within [0, 100]
func validPercent(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}
