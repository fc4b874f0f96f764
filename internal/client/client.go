package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yukikurage/teamtask/internal/logger"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL        = "http://localhost:1337/api"
	DefaultTimeout        = 10 * time.Second
	DefaultRateLimitDelay = 5 * time.Second
)

// Credentials supplies the bearer token for each request and tears the
// session down when the server rejects it.
type Credentials interface {
	Token() string
	Expire(token string)
}

// Config configures a Client. Zero values take the package defaults.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitDelay time.Duration
	HTTPClient     *http.Client
}

// Client is a JSON client for the teamtask API.
type Client struct {
	baseURL        string
	http           *http.Client
	creds          Credentials
	rateLimitDelay time.Duration
	log            *zap.Logger
}

// New builds a client. creds may be nil for anonymous use.
func New(cfg Config, creds Credentials, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimitDelay <= 0 {
		cfg.RateLimitDelay = DefaultRateLimitDelay
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		http:           httpClient,
		creds:          creds,
		rateLimitDelay: cfg.RateLimitDelay,
		log:            logger.OrNop(log).Named("client"),
	}
}

type requestOptions struct {
	token    *string
	query    *Query
	rawQuery string
}

// RequestOption customises a single call.
type RequestOption func(*requestOptions)

// WithToken sends token instead of the one held by Credentials.
func WithToken(token string) RequestOption {
	return func(o *requestOptions) {
		o.token = &token
	}
}

// WithQuery attaches list parameters.
func WithQuery(q *Query) RequestOption {
	return func(o *requestOptions) {
		o.query = q
	}
}

// WithRawQuery attaches a pre-encoded query string such as "populate=role,teams".
func WithRawQuery(raw string) RequestOption {
	return func(o *requestOptions) {
		o.rawQuery = raw
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, body, out, opts...)
}

// Do sends one request and decodes a successful response into out.
// A 429 is replayed once after the rate limit delay. A 401 expires the
// token that was sent and is never retried.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "invalid request body", Err: err}
		}
	}

	token := ""
	if o.token != nil {
		token = *o.token
	} else if c.creds != nil {
		token = c.creds.Token()
	}

	url := c.baseURL + path
	raw := o.rawQuery
	if encoded := o.query.Encode(); encoded != "" {
		if raw != "" {
			raw += "&"
		}
		raw += encoded
	}
	if raw != "" {
		url += "?" + raw
	}

	for attempt := 0; ; attempt++ {
		status, data, err := c.send(ctx, method, url, payload, token)
		if err != nil {
			c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
			return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
		}

		switch {
		case status == http.StatusTooManyRequests:
			if attempt > 0 {
				return &Error{Kind: KindRateLimited, Message: msgRateLimited, StatusCode: status}
			}
			c.log.Info("rate limited, retrying", zap.String("path", path), zap.Duration("delay", c.rateLimitDelay))
			if err := sleep(ctx, c.rateLimitDelay); err != nil {
				return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
			}
			continue
		case status == http.StatusUnauthorized:
			if token != "" && c.creds != nil {
				c.creds.Expire(token)
			}
			return &Error{Kind: KindAuth, Message: serverMessage(data, msgUnauthorized), StatusCode: status}
		case status >= http.StatusBadRequest:
			return &Error{Kind: KindServer, Message: serverMessage(data, msgDefaultFailure), StatusCode: status}
		}

		if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindServer, Message: "invalid response from server", StatusCode: status, Err: err}
		}
		return nil
	}
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte, token string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// serverMessage extracts error.message, then message, then fallback.
func serverMessage(data []byte, fallback string) string {
	var body struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fallback
	}
	if body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	if body.Message != "" {
		return body.Message
	}
	return fallback
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
