package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Default timeout for backend requests
	defaultTimeout = 10 * time.Second

	// Upper bound on JSON bodies; export bodies are not limited
	maxJSONBody = 4 << 20

	headerRequestID = "X-Request-ID"
)

var (
	// ErrRejected is returned when the backend answers success:false
	ErrRejected = errors.New("request rejected by backend")
	// ErrBadResponse is returned when a body is not the expected JSON
	ErrBadResponse = errors.New("malformed backend response")
)

// StatusError reports a non-2xx response that carried no usable JSON body
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code: %d", e.Endpoint, e.StatusCode)
}

// Client talks to the stats backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets a custom timeout for every request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log.Named("api")
	}
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestIDKey struct{}

// ContextWithRequestID attaches the id sent as X-Request-ID
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id attached to ctx, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// do sends a request and returns the open response. Callers close the body.
func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	id := RequestIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(headerRequestID, id)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.String("request_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.String("request_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	return resp, nil
}

// doJSON sends a request and decodes the JSON answer into out.
// A body that decodes wins over the status code so that success:false
// answers sent with 4xx statuses surface as rejections.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	resp, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("%s: failed to read body: %w", endpoint, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("%s: %w: %v", endpoint, ErrBadResponse, err)
	}

	return nil
}
