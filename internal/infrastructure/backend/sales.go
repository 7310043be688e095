package backend

import (
	"context"
	"net/http"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ checkout.SalesGateway = (*Client)(nil)

// CompleteSale submits a finalized sale exactly once per idempotency key.
// The caller owns the deadline; the call is never retried here.
func (c *Client) CompleteSale(ctx context.Context, sale checkout.CompletedSale, idempotencyKey string) (*checkout.SaleConfirmation, error) {
	if idempotencyKey == "" {
		return nil, shared.NewDomainError("IDEMPOTENCY_KEY_REQUIRED", "Sale submission requires an idempotency key")
	}
	body, err := newCompleteSaleRequest(sale)
	if err != nil {
		return nil, err
	}

	var out saleConfirmationResponse
	err = c.call(ctx, request{
		method:  http.MethodPost,
		path:    "/pos/sales",
		body:    body,
		headers: map[string]string{IdempotencyKeyHeader: idempotencyKey},
		out:     &out,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("sale submitted",
		zap.String("sale_id", out.ID.String()),
		zap.String("sale_number", out.SaleNumber),
		zap.String("idempotency_key", idempotencyKey),
	)
	return &checkout.SaleConfirmation{
		SaleID:      out.ID,
		SaleNumber:  out.SaleNumber,
		CompletedAt: out.CompletedAt,
	}, nil
}

// CreateDraft stores the cart as a suspended sale
func (c *Client) CreateDraft(ctx context.Context, state checkout.CartState) (*checkout.DraftSale, error) {
	if len(state.Lines) == 0 {
		return nil, checkout.ErrEmptyCart
	}

	var out draftResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/pos/drafts",
		body: draftRequest{
			CustomerID:      state.CustomerID,
			Items:           toSaleItems(state.Lines),
			DiscountPercent: state.BillDiscountPercent,
			Notes:           state.Notes,
		},
		out: &out,
	})
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// ListDrafts returns the suspended sales of the current session
func (c *Client) ListDrafts(ctx context.Context) ([]checkout.DraftSummary, error) {
	var out []draftSummaryResponse
	err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/pos/drafts",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}

	drafts := make([]checkout.DraftSummary, 0, len(out))
	for _, d := range out {
		drafts = append(drafts, d.toDomain())
	}
	return drafts, nil
}

// ResumeDraft claims a suspended sale; the backend removes it from the list
func (c *Client) ResumeDraft(ctx context.Context, draftID uuid.UUID) (*checkout.DraftSale, error) {
	if draftID == uuid.Nil {
		return nil, checkout.ErrDraftNotFound
	}

	var out *draftResponse
	err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     "/pos/drafts/" + draftID.String() + "/resume",
		notFound: checkout.ErrDraftNotFound,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, checkout.ErrDraftNotFound
	}
	return out.toDomain(), nil
}
