package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DraftCoordinator moves carts to and from the backend's suspended-sale list
type DraftCoordinator struct {
	gateway checkout.SalesGateway
	logger  *zap.Logger
}

// NewDraftCoordinator creates a new DraftCoordinator
func NewDraftCoordinator(gateway checkout.SalesGateway, logger *zap.Logger) *DraftCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftCoordinator{gateway: gateway, logger: logger}
}

// Suspend stores the cart as a draft. The caller clears its cart only when this succeeds.
func (d *DraftCoordinator) Suspend(ctx context.Context, cart *checkout.Cart) (*checkout.DraftSale, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, checkout.ErrEmptyCart
	}

	draft, err := d.gateway.CreateDraft(ctx, cart.State())
	if err != nil {
		return nil, err
	}

	d.logger.Info("sale suspended",
		zap.String("draft_id", draft.ID.String()),
		zap.Int("lines", cart.LineCount()),
	)
	return draft, nil
}

// ListDrafts returns the suspended sales available for resuming
func (d *DraftCoordinator) ListDrafts(ctx context.Context) ([]checkout.DraftSummary, error) {
	return d.gateway.ListDrafts(ctx)
}

// Resume claims a draft and rebuilds its cart. Claiming removes the draft
// from the backend, so a draft that fails to rebuild is parked again.
func (d *DraftCoordinator) Resume(ctx context.Context, draftID uuid.UUID) (*checkout.Cart, error) {
	draft, err := d.gateway.ResumeDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	cart, err := draft.ToCart()
	if err != nil {
		return nil, d.repark(ctx, draft, err)
	}

	d.logger.Info("sale resumed",
		zap.String("draft_id", draftID.String()),
		zap.Int("lines", cart.LineCount()),
	)
	return cart, nil
}

func (d *DraftCoordinator) repark(ctx context.Context, draft *checkout.DraftSale, cause error) error {
	parked, err := d.gateway.CreateDraft(ctx, draft.Cart)
	if err != nil {
		d.logger.Error("invalid draft could not be parked again",
			zap.String("draft_id", draft.ID.String()),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return errors.Join(cause, fmt.Errorf("repark draft %s: %w", draft.ID, err))
	}

	d.logger.Warn("invalid draft parked again",
		zap.String("draft_id", draft.ID.String()),
		zap.String("new_draft_id", parked.ID.String()),
		zap.Error(cause),
	)
	return cause
}
