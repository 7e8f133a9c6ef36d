package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bssaj-admin/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

const maxErrorBody = 4096

type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
	Log        *slog.Logger
	Metrics    *metrics.Collector
	// RequestID extracts the caller's request id from ctx for X-Request-ID.
	RequestID func(ctx context.Context) string
}

type Client struct {
	baseURL    string
	token      string
	maxRetries int
	httpClient *http.Client
	log        *slog.Logger
	metrics    *metrics.Collector
	requestID  func(ctx context.Context) string
	newBackoff func() backoff.BackOff
	group      singleflight.Group
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		maxRetries: opts.MaxRetries,
		httpClient: httpClient,
		log:        log,
		metrics:    opts.Metrics,
		requestID:  opts.RequestID,
		newBackoff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 200 * time.Millisecond
			bo.MaxElapsedTime = 5 * time.Second
			return bo
		},
	}
}

type response struct {
	status int
	body   []byte
}

// get performs an idempotent GET. Identical concurrent GETs share one upstream
// call; transient failures are retried with backoff.
func (c *Client) get(ctx context.Context, collection, op, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	ch := c.group.DoChan(target, func() (interface{}, error) {
		// The shared call must outlive a single caller giving up.
		shared := context.WithoutCancel(ctx)
		return c.getWithRetry(shared, collection, op, target)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (c *Client) getWithRetry(ctx context.Context, collection, op, target string) ([]byte, error) {
	var body []byte
	bo := backoff.WithMaxRetries(c.newBackoff(), uint64(max(c.maxRetries, 0)))

	err := backoff.Retry(func() error {
		resp, err := c.send(ctx, collection, op, http.MethodGet, target, nil, "")
		if err != nil {
			return err // transport errors are retryable
		}
		if resp.status >= 200 && resp.status < 300 {
			body = resp.body
			return nil
		}
		apiErr := parseError(resp.status, resp.body)
		if isRetryableStatus(resp.status) {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// mutate sends a non-idempotent request exactly once.
func (c *Client) mutate(ctx context.Context, collection, op, method, path string, body Body) ([]byte, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		r, err := body.Reader()
		if err != nil {
			return nil, err
		}
		reader = r
		contentType = body.ContentType()
	}

	resp, err := c.send(ctx, collection, op, method, c.baseURL+path, reader, contentType)
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, parseError(resp.status, resp.body)
	}
	return resp.body, nil
}

func (c *Client) send(ctx context.Context, collection, op, method, target string, body io.Reader, contentType string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, fmt.Errorf("apiclient: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.requestID != nil {
		if id := c.requestID(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(collection, op, 0, time.Since(start))
		c.log.Warn("api request failed",
			slog.String("collection", collection),
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return response{}, fmt.Errorf("apiclient: %s %s: %w", method, collection, err)
	}
	defer resp.Body.Close()

	limit := int64(32 << 20)
	if resp.StatusCode >= 300 {
		limit = maxErrorBody
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	c.metrics.RecordUpstream(collection, op, resp.StatusCode, time.Since(start))
	if err != nil {
		return response{}, fmt.Errorf("apiclient: read %s %s: %w", method, collection, err)
	}
	return response{status: resp.StatusCode, body: raw}, nil
}

func decodeData(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrNotFound
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("apiclient: decode envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("apiclient: decode data: %w", err)
	}
	return nil
}

// IsClientError reports whether err is a 4xx answer: the request itself was wrong.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}
