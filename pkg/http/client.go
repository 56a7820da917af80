package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single round trip when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client executes fully-built requests against the Jira APIs. It makes exactly
// one attempt per request and never retries.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClientWithLogger creates a new HTTP client with a custom logger and timeout
func NewClientWithLogger(logger *zap.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTPClient wraps an existing *http.Client, e.g. httptest.Server.Client().
func NewClientWithHTTPClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Timeout returns the per-request timeout of the underlying client.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Do executes req once. Headers are never logged since they carry credentials.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.logger.Debug("Making HTTP request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("HTTP request failed",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()))
		return nil, err
	}

	c.logger.Debug("HTTP request completed",
		zap.Int("status_code", resp.StatusCode),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Duration("elapsed", time.Since(start)))

	return resp, nil
}
