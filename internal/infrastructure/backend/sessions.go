package backend

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/shopspring/decimal"
)

var _ checkout.SessionService = (*Client)(nil)

var errNoCurrentSession = errors.New("no current session")

// CurrentSession returns the cashier's session, or nil when there is none
func (c *Client) CurrentSession(ctx context.Context) (*checkout.Session, error) {
	var out *sessionResponse
	err := c.call(ctx, request{
		method:   http.MethodGet,
		path:     "/pos/sessions/current",
		notFound: errNoCurrentSession,
		out:      &out,
	})
	if errors.Is(err, errNoCurrentSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out.toDomain(), nil
}

// OpenSession opens a cash-drawer session with the counted opening cash
func (c *Client) OpenSession(ctx context.Context, openingCash decimal.Decimal) (*checkout.Session, error) {
	if err := checkout.ValidateOpeningCash(openingCash); err != nil {
		return nil, err
	}

	var out sessionResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/pos/sessions",
		body:   openSessionRequest{OpeningCash: openingCash},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}
