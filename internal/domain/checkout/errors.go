package checkout

import "github.com/erp/pos/internal/domain/shared"

// Validation errors. These are raised before any network call.
var (
	ErrInvalidProduct         = shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	ErrProductInactive        = shared.NewDomainError("PRODUCT_INACTIVE", "Product is not active and cannot be sold")
	ErrInvalidQuantity        = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInvalidPrice           = shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	ErrInvalidDiscount        = shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	ErrInvalidBillDiscount    = shared.NewDomainError("INVALID_BILL_DISCOUNT", "Bill discount must be between 0 and 100 percent")
	ErrInvalidTaxRate         = shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100 percent")
	ErrNotesTooLong           = shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	ErrLineNotFound           = shared.NewDomainErrorOfKind(shared.KindNotFound, "LINE_NOT_FOUND", "Cart line not found")
	ErrEmptyCart              = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	ErrCartNotEmpty           = shared.NewDomainErrorOfKind(shared.KindConflict, "CART_NOT_EMPTY", "Current cart is not empty, confirm discarding it first")
	ErrSessionRequired        = shared.NewDomainError("SESSION_REQUIRED", "An open cash session is required before checkout")
	ErrSessionAlreadyOpen     = shared.NewDomainErrorOfKind(shared.KindConflict, "SESSION_ALREADY_OPEN", "A cash session is already open")
	ErrInvalidOpeningCash     = shared.NewDomainError("INVALID_OPENING_CASH", "Opening cash cannot be negative")
	ErrUnknownTenderMethod    = shared.NewDomainError("UNKNOWN_TENDER_METHOD", "Unsupported payment method")
	ErrInvalidTenderAmount    = shared.NewDomainError("INVALID_TENDER_AMOUNT", "Tender amount must be positive")
	ErrTenderExceedsRemaining = shared.NewDomainError("TENDER_EXCEEDS_REMAINING", "Non-cash tender cannot exceed the remaining amount due")
	ErrTenderNotFound         = shared.NewDomainErrorOfKind(shared.KindNotFound, "TENDER_NOT_FOUND", "Tender not found")
	ErrPaymentIncomplete      = shared.NewDomainError("PAYMENT_INCOMPLETE", "Payment does not cover the total yet")
	ErrCheckoutNotStarted     = shared.NewDomainErrorOfKind(shared.KindConflict, "CHECKOUT_NOT_STARTED", "No checkout is in progress")
	ErrCheckoutInProgress     = shared.NewDomainErrorOfKind(shared.KindConflict, "CHECKOUT_IN_PROGRESS", "Cancel the current checkout before editing the cart")
	ErrSubmissionInProgress   = shared.NewDomainErrorOfKind(shared.KindConflict, "SUBMISSION_IN_PROGRESS", "A sale submission is already in progress")
	ErrInvalidCustomer        = shared.NewDomainError("INVALID_CUSTOMER", "First name, last name and phone are required")
)

// Not-found errors reported by collaborators.
var (
	ErrProductNotFound  = shared.NewDomainErrorOfKind(shared.KindNotFound, "PRODUCT_NOT_FOUND", "No product matches this code")
	ErrCustomerNotFound = shared.NewDomainErrorOfKind(shared.KindNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	ErrDraftNotFound    = shared.NewDomainErrorOfKind(shared.KindNotFound, "DRAFT_NOT_FOUND", "Suspended sale no longer exists")
	ErrNoSnapshot       = shared.NewDomainErrorOfKind(shared.KindNotFound, "NO_SNAPSHOT", "No recovery snapshot is pending")
)
