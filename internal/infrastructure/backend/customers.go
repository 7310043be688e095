package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/erp/pos/internal/domain/checkout"
)

var _ checkout.CustomerDirectory = (*Client)(nil)

// SearchCustomers returns customers matching a name or phone fragment
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]checkout.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []checkout.Customer{}, nil
	}

	var out []customerResponse
	err := c.call(ctx, request{
		method:  http.MethodGet,
		path:    "/customers/search",
		query:   url.Values{"q": []string{query}},
		guarded: true,
		out:     &out,
	})
	if err != nil {
		return nil, err
	}

	customers := make([]checkout.Customer, 0, len(out))
	for _, cu := range out {
		customers = append(customers, cu.toDomain())
	}
	return customers, nil
}

// CreateCustomer registers a walk-in customer
func (c *Client) CreateCustomer(ctx context.Context, input checkout.NewCustomerInput) (*checkout.Customer, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var out customerResponse
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/customers",
		body: createCustomerRequest{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Phone:     input.Phone,
			Email:     input.Email,
		},
		out: &out,
	})
	if err != nil {
		return nil, err
	}

	customer := out.toDomain()
	return &customer, nil
}
