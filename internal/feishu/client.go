package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/larktask/internal/instrumentation"
	"github.com/teemow/larktask/internal/logging"
)

const (
	// DefaultBaseURL is the Feishu open platform endpoint.
	DefaultBaseURL = "https://open.feishu.cn"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	contentTypeJSON = "application/json; charset=utf-8"
)

// Op names a remote operation as service and action. It is used for error
// messages, metric labels and span names.
type Op struct {
	Service string
	Name    string
}

// String returns "<service>.<name>".
func (o Op) String() string {
	return o.Service + "." + o.Name
}

// Config holds what is needed to reach the open platform as an app.
type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	Timeout   time.Duration
}

// Client performs authenticated calls against the open platform and unwraps
// the {code,msg,data} envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	transport http.RoundTripper
	now       func() time.Time
}

// WithMetrics records API call metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithTransport sets the base round tripper used for both token and API calls.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// Response is the envelope returned by every open API endpoint.
type Response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a client authenticated with a cached tenant access token.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, ErrMissingCredentials
	}

	o := clientOptions{
		logger:    slog.Default(),
		transport: http.DefaultTransport,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := logging.WithService(o.logger, "feishu")

	src := &tenantTokenSource{
		baseURL:    baseURL,
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		httpClient: &http.Client{Transport: o.transport, Timeout: timeout},
		metrics:    o.metrics,
		logger:     logger,
		now:        o.now,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, src),
				Base:   o.transport,
			},
		},
		metrics: o.metrics,
		logger:  logger,
	}, nil
}

// Get issues a GET and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, op Op, path string, query url.Values, out any) error {
	return c.Do(ctx, op, http.MethodGet, path, query, nil, out)
}

// Post issues a POST with a JSON body and decodes the envelope data into out.
func (c *Client) Post(ctx context.Context, op Op, path string, query url.Values, body, out any) error {
	return c.Do(ctx, op, http.MethodPost, path, query, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the envelope data into out.
func (c *Client) Patch(ctx context.Context, op Op, path string, body, out any) error {
	return c.Do(ctx, op, http.MethodPatch, path, nil, body, out)
}

// Delete issues a DELETE and checks the envelope code.
func (c *Client) Delete(ctx context.Context, op Op, path string) error {
	return c.Do(ctx, op, http.MethodDelete, path, nil, nil, nil)
}

// Do performs one API call. A non-zero envelope code is returned as *APIError.
// out may be nil when the response data is not needed.
func (c *Client) Do(ctx context.Context, op Op, method, path string, query url.Values, body, out any) (err error) {
	ctx, span := instrumentation.StartAPISpan(ctx, op.Service, op.Name)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		c.metrics.RecordAPIOperation(ctx, op.Service, op.Name, instrumentation.StatusFor(err), duration)
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		c.logger.Debug("feishu api call",
			logging.Operation(op.String()),
			slog.String("method", method),
			slog.Duration(logging.KeyDuration, duration),
			logging.Status(instrumentation.StatusFor(err)),
			logging.Err(err))
	}()

	resp, err := c.do(ctx, op, method, path, query, body)
	if err != nil {
		return err
	}

	if out != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("%s: failed to decode response data: %w", op, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op Op, method, path string, query url.Values, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, unwrapTokenError(err))
	}
	defer httpResp.Body.Close()

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		if httpResp.StatusCode >= http.StatusBadRequest {
			return nil, &APIError{Op: op.String(), HTTPStatus: httpResp.StatusCode}
		}
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}

	if resp.Code != 0 {
		return nil, &APIError{Op: op.String(), Code: resp.Code, Msg: resp.Msg, HTTPStatus: httpResp.StatusCode}
	}
	return &resp, nil
}

// unwrapTokenError surfaces a token APIError hidden inside *url.Error so
// credential failures keep their remote code.
func unwrapTokenError(err error) error {
	if urlErr, ok := err.(*url.Error); ok {
		if apiErr, ok := urlErr.Err.(*APIError); ok {
			return apiErr
		}
	}
	return err
}

// PathEscape escapes an identifier for use as a path segment.
func PathEscape(id string) string {
	return url.PathEscape(id)
}
