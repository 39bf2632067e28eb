package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/infrastructure/circuitbreaker"
	"github.com/evmarket/checkout-client/internal/observability/telemetry"
	"github.com/evmarket/checkout-client/internal/ports"
)

const maxBodySize = 1 << 20

var (
	_ ports.ListingAPI     = (*Client)(nil)
	_ ports.CheckoutAPI    = (*Client)(nil)
	_ ports.WalletAPI      = (*Client)(nil)
	_ ports.TransactionAPI = (*Client)(nil)
	_ ports.AuthAPI        = (*Client)(nil)
	_ ports.ChatbotAPI     = (*Client)(nil)
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the EVmarket REST backend. It implements every backend
// port in internal/ports. The bearer token comes from the session provider
// on each call, and a 401 invalidates that session.
type Client struct {
	baseURL   string
	userAgent string
	http      *circuitbreaker.HTTPClient
	sessions  ports.SessionProvider
	log       *zap.Logger
}

// envelope is the {message, data} wrapper every success response uses.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorBody struct {
	Message string       `json:"message"`
	Error   string       `json:"error"`
	Errors  []FieldError `json:"errors"`
}

// NewClient creates the backend client. sessions may be nil for
// unauthenticated use; breaker may be nil to disable circuit breaking.
func NewClient(cfg Config, breaker *circuitbreaker.CircuitBreaker, sessions ports.SessionProvider, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "evmarket-checkout-client"
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      circuitbreaker.NewHTTPClient(httpClient, breaker, log),
		sessions:  sessions,
		log:       log,
	}
}

// call is one request description passed to do.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	// noAuth skips the bearer token, used by login and register.
	noAuth bool
}

// do sends the request and decodes the envelope's data block into out.
func (c *Client) do(ctx context.Context, cl call, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "evmarket."+cl.op,
		attribute.String("http.method", cl.method),
		attribute.String("http.route", cl.path),
	)
	defer span.End()

	start := time.Now()
	status, err := c.send(ctx, cl, out)

	telemetry.BackendLatency.WithLabelValues(cl.op).Observe(time.Since(start).Seconds())
	telemetry.BackendRequestsTotal.WithLabelValues(cl.op, statusLabel(status)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", status))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Debug("Backend call failed",
			zap.String("op", cl.op),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) send(ctx context.Context, cl call, out interface{}) (int, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("evmarket api: %s: marshal request: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return 0, fmt.Errorf("evmarket api: %s: create request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !cl.noAuth {
		c.authorize(ctx, req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: cl.op, Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, &Error{Op: cl.op, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Op: cl.op, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
			apiErr.ErrorText = eb.Error
			apiErr.Errors = eb.Errors
		}
		if resp.StatusCode == http.StatusUnauthorized && !cl.noAuth && c.sessions != nil {
			c.sessions.Invalidate(ctx, fmt.Sprintf("%s returned 401", cl.op))
		}
		return resp.StatusCode, apiErr
	}

	if out == nil || len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return resp.StatusCode, fmt.Errorf("evmarket api: %s: decode response: %w", cl.op, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return resp.StatusCode, fmt.Errorf("evmarket api: %s: decode data: %w", cl.op, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if c.sessions == nil {
		return
	}
	sess, err := c.sessions.Get(ctx)
	switch {
	case err == nil && sess != nil && sess.AccessToken != "":
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	case err == nil, errors.Is(err, ports.ErrNoSession), errors.Is(err, ports.ErrSessionExpired):
		// anonymous call, the backend decides whether that is allowed
	default:
		c.log.Warn("Failed to read session, sending request without token", zap.Error(err))
	}
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func escape(id string) string {
	return url.PathEscape(id)
}
