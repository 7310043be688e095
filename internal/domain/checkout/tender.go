package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TenderMethod is a supported payment instrument
type TenderMethod string

const (
	TenderCash    TenderMethod = "cash"
	TenderCard    TenderMethod = "card"
	TenderMobile  TenderMethod = "mobile"
	TenderVoucher TenderMethod = "voucher"
)

// backendTenderCodes maps tender methods to the codes the sales backend accepts
var backendTenderCodes = map[TenderMethod]string{
	TenderCash:    "CASH",
	TenderCard:    "CARD",
	TenderMobile:  "MOBILE",
	TenderVoucher: "VOUCHER",
}

// IsValid checks if the method is a supported TenderMethod
func (m TenderMethod) IsValid() bool {
	_, ok := backendTenderCodes[m]
	return ok
}

// String returns the string representation of TenderMethod
func (m TenderMethod) String() string {
	return string(m)
}

// AllowsChange reports whether the method may exceed the remaining due
func (m TenderMethod) AllowsChange() bool {
	return m == TenderCash
}

// BackendCode returns the backend payment code for the method
func (m TenderMethod) BackendCode() (string, error) {
	code, ok := backendTenderCodes[m]
	if !ok {
		return "", ErrUnknownTenderMethod
	}
	return code, nil
}

// ParseTenderMethod parses a method name or a backend code. Unknown values are rejected.
func ParseTenderMethod(s string) (TenderMethod, error) {
	normalized := TenderMethod(strings.ToLower(strings.TrimSpace(s)))
	if !normalized.IsValid() {
		return "", ErrUnknownTenderMethod
	}
	return normalized, nil
}

// Tender is a single payment instrument and amount applied toward the total
type Tender struct {
	Method TenderMethod    `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Epsilon is one minor currency unit, the tolerance of the finalize gate
var Epsilon = decimal.NewFromFloat(0.01)

// Reconciler accumulates tenders against the total of one checkout attempt
type Reconciler struct {
	total   decimal.Decimal
	tenders []Tender
}

// NewReconciler opens a reconciler for the given total. Tenders settle in
// minor units, so the total is rounded to DisplayPlaces first.
func NewReconciler(total decimal.Decimal) *Reconciler {
	total = total.Round(DisplayPlaces)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return &Reconciler{
		total:   total,
		tenders: make([]Tender, 0),
	}
}

// AddTender appends a tender. Non-cash tenders cannot exceed the remaining due.
func (r *Reconciler) AddTender(method TenderMethod, amount decimal.Decimal) (Tender, error) {
	if !method.IsValid() {
		return Tender{}, ErrUnknownTenderMethod
	}
	if !amount.IsPositive() {
		return Tender{}, ErrInvalidTenderAmount
	}
	if !method.AllowsChange() && amount.GreaterThan(r.Remaining()) {
		return Tender{}, ErrTenderExceedsRemaining
	}

	tender := Tender{Method: method, Amount: amount}
	r.tenders = append(r.tenders, tender)
	return tender, nil
}

// RemoveTender removes the tender at index
func (r *Reconciler) RemoveTender(index int) error {
	if index < 0 || index >= len(r.tenders) {
		return ErrTenderNotFound
	}
	r.tenders = append(r.tenders[:index], r.tenders[index+1:]...)
	return nil
}

// Tenders returns a copy of the tenders in the order they were added
func (r *Reconciler) Tenders() []Tender {
	tenders := make([]Tender, len(r.tenders))
	copy(tenders, r.tenders)
	return tenders
}

// Total returns the amount due
func (r *Reconciler) Total() decimal.Decimal {
	return r.total
}

// Paid returns the sum of all tenders
func (r *Reconciler) Paid() decimal.Decimal {
	paid := decimal.Zero
	for _, t := range r.tenders {
		paid = paid.Add(t.Amount)
	}
	return paid
}

// Remaining returns max(0, total - paid)
func (r *Reconciler) Remaining() decimal.Decimal {
	remaining := r.total.Sub(r.Paid())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Change returns max(0, paid - total)
func (r *Reconciler) Change() decimal.Decimal {
	change := r.Paid().Sub(r.total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// CanFinalize reports whether at least one tender exists and the remaining due is within Epsilon
func (r *Reconciler) CanFinalize() bool {
	return len(r.tenders) > 0 && r.Remaining().LessThanOrEqual(Epsilon)
}
