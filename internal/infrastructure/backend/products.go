package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/erp/pos/internal/domain/checkout"
)

var _ checkout.ProductCatalog = (*Client)(nil)

// SearchProducts returns products matching a name, SKU or barcode fragment
func (c *Client) SearchProducts(ctx context.Context, query string) ([]checkout.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []checkout.Product{}, nil
	}

	var out []productResponse
	err := c.call(ctx, request{
		method:  http.MethodGet,
		path:    "/products/search",
		query:   url.Values{"q": []string{query}},
		guarded: true,
		out:     &out,
	})
	if err != nil {
		return nil, err
	}

	products := make([]checkout.Product, 0, len(out))
	for _, p := range out {
		products = append(products, p.toDomain())
	}
	return products, nil
}

// FindByCode resolves an exact barcode or SKU
func (c *Client) FindByCode(ctx context.Context, code string) (*checkout.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, checkout.ErrProductNotFound
	}

	var out *productResponse
	err := c.call(ctx, request{
		method:   http.MethodGet,
		path:     "/products/code/" + url.PathEscape(code),
		guarded:  true,
		notFound: checkout.ErrProductNotFound,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, checkout.ErrProductNotFound
	}

	p := out.toDomain()
	return &p, nil
}
