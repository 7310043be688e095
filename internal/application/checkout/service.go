// Package checkout orchestrates one terminal's checkout screen: cart editing,
// the cash-session gate, tender collection, sale submission, suspended sales
// and crash recovery.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSubmitTimeout bounds one sale submission
const DefaultSubmitTimeout = 35 * time.Second

var (
	// ErrTerminalClosed is returned once the service has been closed
	ErrTerminalClosed = shared.NewDomainErrorOfKind(shared.KindConflict, "TERMINAL_CLOSED", "Terminal is shutting down")
	// ErrNoReceipt is returned when no sale has completed since the last new sale
	ErrNoReceipt = shared.NewDomainErrorOfKind(shared.KindNotFound, "NO_RECEIPT", "No completed sale to print")
)

// Dependencies are the collaborators the service talks to
type Dependencies struct {
	Catalog   checkout.ProductCatalog
	Customers checkout.CustomerDirectory
	Sessions  checkout.SessionService
	Sales     checkout.SalesGateway
	Store     shared.DurableStore
}

// Config holds service configuration
type Config struct {
	TerminalID       string
	SubmitTimeout    time.Duration
	RecoveryInterval time.Duration
	RecoveryKey      string
}

// Option is a functional option for configuring the service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the business metrics sink
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithAttemptKeys overrides the idempotency key generator
func WithAttemptKeys(next func() string) Option {
	return func(s *Service) {
		s.newKey = next
	}
}

type operation string

const (
	opNone    operation = ""
	opSubmit  operation = "submit"
	opSuspend operation = "suspend"
	opResume  operation = "resume"
)

// attempt is one open tender collection. Its key is reused by every
// submission of the attempt so the backend can deduplicate retries.
type attempt struct {
	key        string
	reconciler *checkout.Reconciler
	startedAt  time.Time
}

// Service is the checkout orchestrator. All state lives behind mu and
// backend calls are made without holding it.
type Service struct {
	catalog   checkout.ProductCatalog
	customers checkout.CustomerDirectory
	sessions  checkout.SessionService
	sales     checkout.SalesGateway
	drafts    *DraftCoordinator
	recovery  *RecoveryManager

	terminalID    string
	submitTimeout time.Duration
	metrics       Metrics
	logger        *zap.Logger
	clock         func() time.Time
	newKey        func() string

	mu            sync.Mutex
	cart          *checkout.Cart
	customer      *checkout.Customer
	gate          *checkout.SessionGate
	attempt       *attempt
	busy          operation
	pending       *checkout.RecoverySnapshot
	lastReceipt   *Receipt
	searchResults map[uuid.UUID]checkout.Product
	searchQuery   string
	searchList    []checkout.Product
	searchSeq     uint64
	closed        bool
	stopRecovery  context.CancelFunc
	recoveryDone  chan struct{}
}

// NewService creates a new checkout Service
func NewService(deps Dependencies, cfg Config, opts ...Option) *Service {
	s := &Service{
		catalog:       deps.Catalog,
		customers:     deps.Customers,
		sessions:      deps.Sessions,
		sales:         deps.Sales,
		terminalID:    cfg.TerminalID,
		submitTimeout: cfg.SubmitTimeout,
		metrics:       nopMetrics{},
		logger:        zap.NewNop(),
		clock:         time.Now,
		newKey:        uuid.NewString,
		cart:          checkout.NewCart(),
		gate:          checkout.NewSessionGate(),
		searchResults: make(map[uuid.UUID]checkout.Product),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.submitTimeout <= 0 {
		s.submitTimeout = DefaultSubmitTimeout
	}

	s.drafts = NewDraftCoordinator(deps.Sales, s.logger.Named("drafts"))
	s.recovery = NewRecoveryManager(deps.Store, s.snapshotCart,
		WithRecoveryInterval(cfg.RecoveryInterval),
		WithRecoveryKey(cfg.RecoveryKey),
		WithRecoveryClock(s.clock),
		WithRecoveryLogger(s.logger.Named("recovery")),
		WithRecoveryMetrics(s.metrics),
	)
	return s
}

// Recovery returns the recovery manager
func (s *Service) Recovery() *RecoveryManager {
	return s.recovery
}

// Start refreshes the session gate, looks for a snapshot left by a previous
// run and starts the recovery loop. The loop outlives ctx; Close stops it.
func (s *Service) Start(ctx context.Context) (*StateView, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrTerminalClosed
	}

	var errs []error

	pending, err := s.recovery.Pending(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	if err := s.RefreshSession(ctx); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrTerminalClosed
	}
	if pending != nil {
		s.pending = pending
		s.logger.Info("recovery snapshot found",
			zap.Int("lines", len(pending.Lines)),
			zap.Time("taken_at", pending.Timestamp),
		)
	}
	if s.stopRecovery == nil {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		done := make(chan struct{})
		s.stopRecovery = cancel
		s.recoveryDone = done
		go func() {
			defer close(done)
			s.recovery.Run(runCtx)
		}()
	}
	return s.stateLocked(), errors.Join(errs...)
}

// Close stops the recovery loop. The last snapshot is left in place.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	stop, done := s.stopRecovery, s.recoveryDone
	s.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	s.logger.Info("checkout service closed")
	return nil
}

// State returns the current screen state
func (s *Service) State() *StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// LastReceipt returns the receipt of the most recently completed sale
func (s *Service) LastReceipt() (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReceipt == nil {
		return nil, ErrNoReceipt
	}
	return s.lastReceipt, nil
}

// snapshotCart feeds the recovery manager. Nothing is written while a
// previous snapshot still awaits the operator's decision.
func (s *Service) snapshotCart() *checkout.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil
	}
	return s.cart.Clone()
}

// RefreshSession re-reads the cashier's session from the backend
func (s *Service) RefreshSession(ctx context.Context) error {
	session, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	s.mu.Lock()
	s.gate.Observe(session)
	status := s.gate.Status()
	s.mu.Unlock()

	s.logger.Debug("session refreshed", zap.String("status", status.String()))
	return nil
}

// OpenSession opens a cash-drawer session
func (s *Service) OpenSession(ctx context.Context, openingCash decimal.Decimal) (*StateView, error) {
	if err := checkout.ValidateOpeningCash(openingCash); err != nil {
		return nil, err
	}

	s.mu.Lock()
	err := s.gate.CanOpen()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.OpenSession(ctx, openingCash)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate.Observe(session)
	s.logger.Info("session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("opening_cash", openingCash.StringFixed(checkout.DisplayPlaces)),
	)
	return s.stateLocked(), nil
}

// editableLocked reports whether the cart may be changed right now
func (s *Service) editableLocked() error {
	if s.closed {
		return ErrTerminalClosed
	}
	if s.busy != opNone {
		return checkout.ErrSubmissionInProgress
	}
	if s.attempt != nil {
		return checkout.ErrCheckoutInProgress
	}
	return nil
}

// mutate applies fn to the cart when no checkout or submission is in progress
func (s *Service) mutate(fn func(cart *checkout.Cart) error) (*StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return nil, err
	}
	if err := fn(s.cart); err != nil {
		return nil, err
	}
	return s.stateLocked(), nil
}

// AddProduct adds one product line, or increments it when already present
func (s *Service) AddProduct(_ context.Context, product checkout.Product, quantity decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		_, err := cart.AddOrIncrement(product, quantity)
		return err
	})
}

// AddSearchResult adds a product picked from the latest search results
func (s *Service) AddSearchResult(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) (*StateView, error) {
	s.mu.Lock()
	product, ok := s.searchResults[productID]
	s.mu.Unlock()
	if !ok {
		return nil, checkout.ErrProductNotFound
	}
	return s.AddProduct(ctx, product, quantity)
}

// AddByBarcode resolves a scanned or typed code and adds one unit
func (s *Service) AddByBarcode(ctx context.Context, code string) (*StateView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, checkout.ErrProductNotFound
	}

	// fail before the lookup when the cart cannot take the product anyway
	s.mu.Lock()
	err := s.editableLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		outcome := LookupError
		if errors.Is(err, checkout.ErrProductNotFound) {
			outcome = LookupNotFound
		}
		s.metrics.BarcodeLookup(ctx, outcome)
		logger.WithLogger(ctx, s.logger).Info("barcode lookup failed",
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, err
	}
	if !product.IsActive {
		s.metrics.BarcodeLookup(ctx, LookupInactive)
		return nil, checkout.ErrProductInactive
	}
	s.metrics.BarcodeLookup(ctx, LookupFound)

	return s.AddProduct(ctx, *product, decimal.NewFromInt(1))
}

// SearchProducts queries the catalog. A backend outage yields no results.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]checkout.Product, error) {
	query = strings.TrimSpace(query)
	s.mu.Lock()
	s.searchSeq++
	seq := s.searchSeq
	if query == "" {
		s.setSearchLocked("", nil)
		s.mu.Unlock()
		return []checkout.Product{}, nil
	}
	s.mu.Unlock()

	products, err := s.catalog.SearchProducts(ctx, query)
	if err != nil {
		if !shared.IsTransient(err) {
			return nil, err
		}
		logger.WithLogger(ctx, s.logger).Warn("product search unavailable", zap.Error(err))
		products = []checkout.Product{}
	}

	s.mu.Lock()
	// a slower, older query must not replace newer results
	if seq == s.searchSeq {
		s.setSearchLocked(query, products)
	}
	s.mu.Unlock()

	return products, nil
}

func (s *Service) setSearchLocked(query string, products []checkout.Product) {
	results := make(map[uuid.UUID]checkout.Product, len(products))
	for _, p := range products {
		results[p.ID] = p
	}
	s.searchResults = results
	s.searchQuery = query
	s.searchList = products
}

// NewSale resets the screen for the next customer. A non-empty cart must
// be cleared or suspended first.
func (s *Service) NewSale(_ context.Context) (*StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return nil, err
	}
	if !s.cart.IsEmpty() {
		return nil, checkout.ErrCartNotEmpty
	}
	s.lastReceipt = nil
	s.searchSeq++
	s.setSearchLocked("", nil)
	return s.stateLocked(), nil
}

// SetQuantity sets a line's quantity; zero or less removes the line
func (s *Service) SetQuantity(_ context.Context, productID uuid.UUID, quantity decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetQuantity(productID, quantity)
	})
}

// SetUnitPrice overrides a line's unit price
func (s *Service) SetUnitPrice(_ context.Context, productID uuid.UUID, price decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetUnitPrice(productID, price)
	})
}

// SetLineDiscount sets a line's discount amount
func (s *Service) SetLineDiscount(_ context.Context, productID uuid.UUID, amount decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetLineDiscount(productID, amount)
	})
}

// SetLineTaxRate overrides a line's tax rate
func (s *Service) SetLineTaxRate(_ context.Context, productID uuid.UUID, rate decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetLineTaxRate(productID, rate)
	})
}

// UpdateLine applies every non-nil field of req to one line, all or nothing
func (s *Service) UpdateLine(_ context.Context, productID uuid.UUID, req UpdateLineRequest) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		draft := cart.Clone()
		if req.UnitPrice != nil {
			if err := draft.SetUnitPrice(productID, *req.UnitPrice); err != nil {
				return err
			}
		}
		if req.LineDiscount != nil {
			if err := draft.SetLineDiscount(productID, *req.LineDiscount); err != nil {
				return err
			}
		}
		if req.TaxRate != nil {
			if err := draft.SetLineTaxRate(productID, *req.TaxRate); err != nil {
				return err
			}
		}
		if req.Quantity != nil {
			if err := draft.SetQuantity(productID, *req.Quantity); err != nil {
				return err
			}
		}
		if _, ok := draft.Line(productID); !ok && req.Quantity == nil {
			return checkout.ErrLineNotFound
		}
		*cart = *draft
		return nil
	})
}

// RemoveLine removes a line
func (s *Service) RemoveLine(_ context.Context, productID uuid.UUID) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.RemoveLine(productID)
	})
}

// SetBillDiscount sets the bill-level discount percentage
func (s *Service) SetBillDiscount(_ context.Context, percent decimal.Decimal) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetBillDiscount(percent)
	})
}

// SetNotes sets the sale notes
func (s *Service) SetNotes(_ context.Context, notes string) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		return cart.SetNotes(notes)
	})
}

// SetCustomer attaches a customer to the sale; nil detaches
func (s *Service) SetCustomer(_ context.Context, customer *checkout.Customer) (*StateView, error) {
	return s.mutate(func(cart *checkout.Cart) error {
		if customer == nil || customer.ID == uuid.Nil {
			cart.SetCustomer(nil)
			s.customer = nil
			return nil
		}
		c := *customer
		cart.SetCustomer(&c.ID)
		s.customer = &c
		return nil
	})
}

// ClearCart empties the cart and drops its snapshot
func (s *Service) ClearCart(ctx context.Context) (*StateView, error) {
	view, err := s.mutate(func(cart *checkout.Cart) error {
		cart.Clear()
		s.customer = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.discardSnapshot(ctx)
	return view, nil
}

func (s *Service) discardSnapshot(ctx context.Context) error {
	err := s.recovery.Discard(ctx)
	if err != nil {
		logger.WithLogger(ctx, s.logger).Warn("failed to discard recovery snapshot", zap.Error(err))
	}
	return err
}

// FindCustomers searches the customer directory. A backend outage yields no results.
func (s *Service) FindCustomers(ctx context.Context, query string) ([]checkout.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []checkout.Customer{}, nil
	}
	customers, err := s.customers.SearchCustomers(ctx, query)
	if err != nil {
		if !shared.IsTransient(err) {
			return nil, err
		}
		logger.WithLogger(ctx, s.logger).Warn("customer search unavailable", zap.Error(err))
		return []checkout.Customer{}, nil
	}
	return customers, nil
}

// CreateCustomer registers a customer and attaches it when the cart is editable
func (s *Service) CreateCustomer(ctx context.Context, input checkout.NewCustomerInput) (*checkout.Customer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customers.CreateCustomer(ctx, input)
	if err != nil {
		return nil, err
	}
	if _, err := s.SetCustomer(ctx, customer); err != nil {
		s.logger.Debug("created customer not attached", zap.Error(err))
	}
	return customer, nil
}

// BeginCheckout freezes the cart and opens tender collection at the current total.
// Calling it again while collection is open returns the same attempt.
func (s *Service) BeginCheckout(ctx context.Context) (*StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrTerminalClosed
	}
	if s.busy != opNone {
		return nil, checkout.ErrSubmissionInProgress
	}
	if s.attempt != nil {
		return s.stateLocked(), nil
	}
	if s.cart.IsEmpty() {
		return nil, checkout.ErrEmptyCart
	}
	if err := s.gate.RequireOpen(); err != nil {
		return nil, err
	}

	s.attempt = &attempt{
		key:        s.newKey(),
		reconciler: checkout.NewReconciler(s.cart.Totals().Total),
		startedAt:  s.clock(),
	}
	logger.WithLogger(logger.WithAttempt(ctx, s.attempt.key), s.logger).Info("checkout started",
		zap.String("total", s.attempt.reconciler.Total().StringFixed(checkout.DisplayPlaces)),
	)
	return s.stateLocked(), nil
}

// AddTender applies a payment to the open checkout
func (s *Service) AddTender(_ context.Context, method checkout.TenderMethod, amount decimal.Decimal) (*StateView, error) {
	return s.withAttempt(func(a *attempt) error {
		_, err := a.reconciler.AddTender(method, amount)
		return err
	})
}

// RemoveTender removes the tender at index
func (s *Service) RemoveTender(_ context.Context, index int) (*StateView, error) {
	return s.withAttempt(func(a *attempt) error {
		return a.reconciler.RemoveTender(index)
	})
}

// CancelCheckout closes tender collection and unlocks the cart
func (s *Service) CancelCheckout(_ context.Context) (*StateView, error) {
	return s.withAttempt(func(_ *attempt) error {
		s.attempt = nil
		return nil
	})
}

func (s *Service) withAttempt(fn func(a *attempt) error) (*StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy != opNone {
		return nil, checkout.ErrSubmissionInProgress
	}
	if s.attempt == nil {
		return nil, checkout.ErrCheckoutNotStarted
	}
	if err := fn(s.attempt); err != nil {
		return nil, err
	}
	return s.stateLocked(), nil
}

// CompleteCheckout submits the sale. It never retries; on failure the cart,
// the tenders and the attempt key are kept so the operator can retry safely.
func (s *Service) CompleteCheckout(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	if s.busy != opNone {
		s.mu.Unlock()
		return nil, checkout.ErrSubmissionInProgress
	}
	if s.attempt == nil {
		s.mu.Unlock()
		return nil, checkout.ErrCheckoutNotStarted
	}
	if err := s.gate.RequireOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	rec := s.attempt.reconciler
	if !rec.CanFinalize() {
		s.mu.Unlock()
		return nil, checkout.ErrPaymentIncomplete
	}

	session := s.gate.Current()
	sale := checkout.CompletedSale{
		SessionID: session.ID,
		Cart:      s.cart.State(),
		Totals:    s.cart.Totals().Display(),
		Tenders:   rec.Tenders(),
		Change:    rec.Change(),
	}
	paid := rec.Paid()
	key := s.attempt.key
	var customer *checkout.Customer
	if s.customer != nil {
		c := *s.customer
		customer = &c
	}
	s.busy = opSubmit
	s.mu.Unlock()

	ctx = logger.WithAttempt(ctx, key)
	log := logger.WithLogger(ctx, s.logger)

	submitCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	start := time.Now()
	conf, err := s.sales.CompleteSale(submitCtx, sale, key)
	took := time.Since(start)
	if err == nil && conf == nil {
		err = fmt.Errorf("%w: empty sale confirmation", shared.ErrUpstream)
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %s", shared.ErrTimeout, err)
	}

	s.mu.Lock()
	s.busy = opNone
	if err != nil {
		s.mu.Unlock()
		s.metrics.SubmissionFailed(ctx, string(shared.KindOf(err)), took)
		log.Warn("sale submission failed", zap.Duration("took", took), zap.Error(err))
		return nil, err
	}

	receipt := newReceipt(conf, sale, session, customer, s.terminalID, paid)
	s.cart = checkout.NewCart()
	s.customer = nil
	s.attempt = nil
	s.lastReceipt = receipt
	s.mu.Unlock()

	// a snapshot left behind would offer the sold cart for recovery after a restart
	if err := s.discardSnapshot(ctx); err != nil {
		retained := *receipt
		retained.SnapshotRetained = true
		s.mu.Lock()
		if s.lastReceipt == receipt {
			s.lastReceipt = &retained
		}
		s.mu.Unlock()
		receipt = &retained
	}

	methods := make([]string, len(sale.Tenders))
	for i, t := range sale.Tenders {
		methods[i] = t.Method.String()
	}
	s.metrics.SaleCompleted(ctx, sale.Totals.Total, methods, took)
	log.Info("sale completed",
		zap.String("sale_number", conf.SaleNumber),
		zap.String("total", receipt.Totals.Total.String()),
		zap.Duration("took", took),
	)
	return receipt, nil
}

// Suspend parks the cart as a draft on the backend and starts a fresh sale
func (s *Service) Suspend(ctx context.Context) (*checkout.DraftSale, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.cart.IsEmpty() {
		s.mu.Unlock()
		return nil, checkout.ErrEmptyCart
	}
	cart := s.cart.Clone()
	s.busy = opSuspend
	s.mu.Unlock()

	draft, err := s.drafts.Suspend(ctx, cart)

	s.mu.Lock()
	s.busy = opNone
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.cart = checkout.NewCart()
	s.customer = nil
	s.mu.Unlock()

	s.discardSnapshot(ctx)
	s.metrics.SaleSuspended(ctx)
	return draft, nil
}

// ListDrafts returns the suspended sales
func (s *Service) ListDrafts(ctx context.Context) ([]checkout.DraftSummary, error) {
	return s.drafts.ListDrafts(ctx)
}

// Resume replaces the cart with a suspended sale. A non-empty cart is only
// replaced when discardCurrent is set.
func (s *Service) Resume(ctx context.Context, draftID uuid.UUID, discardCurrent bool) (*StateView, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !s.cart.IsEmpty() && !discardCurrent {
		s.mu.Unlock()
		return nil, checkout.ErrCartNotEmpty
	}
	s.busy = opResume
	s.mu.Unlock()

	cart, err := s.drafts.Resume(ctx, draftID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = opNone
	if err != nil {
		return nil, err
	}
	s.cart = cart
	s.customer = nil
	s.metrics.SaleResumed(ctx)
	return s.stateLocked(), nil
}

// ResolveRecovery answers the recovery prompt shown at start
func (s *Service) ResolveRecovery(ctx context.Context, accept bool) (*StateView, error) {
	s.mu.Lock()
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.pending == nil {
		s.mu.Unlock()
		return nil, checkout.ErrNoSnapshot
	}
	if accept && !s.cart.IsEmpty() {
		s.mu.Unlock()
		return nil, checkout.ErrCartNotEmpty
	}
	s.mu.Unlock()

	cart, err := s.recovery.Resolve(ctx, accept)

	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, checkout.ErrNoSnapshot) {
		s.pending = nil
	}
	if err != nil {
		return nil, err
	}
	s.pending = nil
	if cart != nil {
		s.cart = cart
		s.customer = nil
	}
	return s.stateLocked(), nil
}

func (s *Service) stateLocked() *StateView {
	lines := s.cart.Lines()
	lineViews := make([]LineView, len(lines))
	for i, l := range lines {
		lineViews[i] = ToLineView(l)
	}

	view := &StateView{
		Lines:               lineViews,
		Totals:              ToTotalsView(s.cart.Totals()),
		ItemCount:           s.cart.LineCount(),
		TotalQuantity:       s.cart.TotalQuantity(),
		CustomerID:          s.cart.CustomerID(),
		Customer:            ToCustomerView(s.customer),
		BillDiscountPercent: s.cart.BillDiscountPercent(),
		Notes:               s.cart.Notes(),
		Session:             toSessionView(s.gate),
		Submitting:          s.busy == opSubmit,
		PendingRecovery:     toRecoveryView(s.pending),
		StaleSnapshot:       s.recovery.Stale(),
		LastReceipt:         s.lastReceipt,
	}
	if s.searchQuery != "" {
		view.Search = &SearchView{Query: s.searchQuery, Results: ToProductViews(s.searchList)}
	}
	if a := s.attempt; a != nil {
		view.Checkout = &CheckoutView{
			AttemptKey:  a.key,
			Total:       round(a.reconciler.Total()),
			Paid:        round(a.reconciler.Paid()),
			Remaining:   round(a.reconciler.Remaining()),
			Change:      round(a.reconciler.Change()),
			Tenders:     ToTenderViews(a.reconciler.Tenders()),
			CanFinalize: a.reconciler.CanFinalize(),
			StartedAt:   a.startedAt,
		}
	}
	return view
}
