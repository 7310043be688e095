// Package backend is the HTTP client for the ERP backend services the
// checkout core consumes: products, customers, cash sessions and sales.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the checkout attempt key on sale submissions
const IdempotencyKeyHeader = "Idempotency-Key"

// Config holds backend client configuration
type Config struct {
	BaseURL        string
	APIToken       string
	RequestTimeout time.Duration
	Breaker        BreakerConfig
}

// BreakerConfig configures the circuit breaker that guards lookups
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32 // consecutive failures that trip the breaker
}

// envelope is the response wrapper every backend endpoint returns
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// rawResponse is what passes through the breaker: transport succeeded and status < 500
type rawResponse struct {
	status int
	body   []byte
}

// Client talks to the ERP backend.
// Lookups go through a circuit breaker so a dead backend fails fast while the
// operator keeps scanning; sale, draft and session calls never do.
type Client struct {
	baseURL        string
	apiToken       string
	requestTimeout time.Duration
	httpClient     *http.Client
	breaker        *gobreaker.CircuitBreaker[rawResponse]
	logger         *zap.Logger
}

// ClientOption is a functional option for configuring the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new backend client
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:       cfg.APIToken,
		requestTimeout: cfg.RequestTimeout,
		logger:         zap.NewNop(),
		httpClient: &http.Client{
			// deadlines come from the request context
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.requestTimeout == 0 {
		c.requestTimeout = 10 * time.Second
	}

	bc := cfg.Breaker
	if bc.Name == "" {
		bc.Name = "backend-lookups"
	}
	if bc.FailureThreshold == 0 {
		bc.FailureThreshold = 5
	}
	logger := c.logger
	c.breaker = gobreaker.NewCircuitBreaker[rawResponse](gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// BreakerState returns the current state of the lookup circuit breaker
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	headers  map[string]string
	guarded  bool // route through the circuit breaker
	notFound error
	out      any
}

// call performs one request. It never retries.
func (c *Client) call(ctx context.Context, r request) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	var (
		resp rawResponse
		err  error
	)
	if r.guarded {
		resp, err = c.breaker.Execute(func() (rawResponse, error) {
			return c.roundTrip(ctx, r)
		})
	} else {
		resp, err = c.roundTrip(ctx, r)
	}
	if err != nil {
		return c.transportError(ctx, r, err)
	}

	return c.decode(r, resp)
}

func (c *Client) roundTrip(ctx context.Context, r request) (rawResponse, error) {
	var body io.Reader = http.NoBody
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return rawResponse{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("create %s request: %w", r.method, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return rawResponse{}, err
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return rawResponse{}, fmt.Errorf("read response body: %w", err)
	}

	// 5xx counts as a breaker failure, 4xx does not
	if httpResp.StatusCode >= 500 {
		return rawResponse{}, &serverError{status: httpResp.StatusCode, body: data}
	}
	return rawResponse{status: httpResp.StatusCode, body: data}, nil
}

type serverError struct {
	status int
	body   []byte
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error %d", e.status)
}

// transportError maps network-level failures into the Network error kind
func (c *Client) transportError(ctx context.Context, r request, err error) error {
	c.logger.Warn("backend request failed",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Error(err),
	)

	var srvErr *serverError
	switch {
	case errors.As(err, &srvErr):
		if env, ok := parseEnvelope(srvErr.body); ok && env.Error != nil {
			return fmt.Errorf("%w: %s (%s)", shared.ErrUpstream, env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("%w: status %d", shared.ErrUpstream, srvErr.status)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %s", shared.ErrNetwork, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s %s", shared.ErrTimeout, r.method, r.path)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %s", shared.ErrNetwork, err)
	}
}

// decode unwraps the envelope of a non-5xx response
func (c *Client) decode(r request, resp rawResponse) error {
	env, ok := parseEnvelope(resp.body)

	if resp.status >= 400 || (ok && !env.Success) {
		code, message := "", http.StatusText(resp.status)
		if ok && env.Error != nil {
			code, message = env.Error.Code, env.Error.Message
		}
		return mapClientError(resp.status, code, message, r.notFound)
	}

	if r.out == nil {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: malformed response from %s", shared.ErrUpstream, r.path)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, r.out); err != nil {
		return fmt.Errorf("%w: decode %s response: %s", shared.ErrUpstream, r.path, err)
	}
	return nil
}

func parseEnvelope(body []byte) (envelope, bool) {
	var env envelope
	if len(body) == 0 {
		return env, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return env, false
	}
	return env, true
}

// mapClientError translates a 4xx into a domain error that keeps the backend's code
func mapClientError(status int, code, message string, notFound error) error {
	switch {
	case status == http.StatusNotFound:
		if notFound != nil {
			return notFound
		}
		return shared.ErrNotFound
	case status == http.StatusConflict:
		return shared.NewDomainErrorOfKind(shared.KindConflict, orDefault(code, "CONFLICT"), message)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return shared.NewDomainError(orDefault(code, "INVALID_INPUT"), message)
	case status == http.StatusRequestTimeout:
		return shared.ErrTimeout
	default:
		return shared.NewDomainErrorOfKind(shared.KindInternal, orDefault(code, fmt.Sprintf("HTTP_%d", status)), message)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
