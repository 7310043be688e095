package input

import (
	"context"

	checkoutapp "github.com/erp/pos/internal/application/checkout"
	"github.com/erp/pos/internal/domain/checkout"
	"go.uber.org/zap"
)

// Checkout is the part of the checkout orchestrator driven from the keyboard
type Checkout interface {
	NewSale(ctx context.Context) (*checkoutapp.StateView, error)
	Suspend(ctx context.Context) (*checkout.DraftSale, error)
	BeginCheckout(ctx context.Context) (*checkoutapp.StateView, error)
	ClearCart(ctx context.Context) (*checkoutapp.StateView, error)
	AddByBarcode(ctx context.Context, code string) (*checkoutapp.StateView, error)
	SearchProducts(ctx context.Context, query string) ([]checkout.Product, error)
}

// CheckoutHandlers binds intents and scans to the orchestrator. Intents that
// only move focus or open a dialog (resume, addCustomer, applyDiscount,
// focusSearch, help) have no handler and are reported back to the UI shell.
func CheckoutHandlers(co Checkout, logger *zap.Logger) Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Handlers{
		Intents: map[Intent]HandlerFunc{
			IntentNewSale: func(ctx context.Context) error {
				_, err := co.NewSale(ctx)
				return err
			},
			IntentSuspend: func(ctx context.Context) error {
				_, err := co.Suspend(ctx)
				return err
			},
			IntentCheckout: func(ctx context.Context) error {
				_, err := co.BeginCheckout(ctx)
				return err
			},
			IntentClearCart: func(ctx context.Context) error {
				_, err := co.ClearCart(ctx)
				return err
			},
		},
		Barcode: func(ctx context.Context, code string) error {
			_, err := co.AddByBarcode(ctx, code)
			return err
		},
		Search: func(ctx context.Context, query string) {
			if _, err := co.SearchProducts(ctx, query); err != nil {
				logger.Warn("search failed", zap.String("query", query), zap.Error(err))
			}
		},
	}
}
