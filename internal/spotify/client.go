// Package spotify is the HTTP adapter for the upstream music catalog and
// player. A Client is bound to a single access token; the session layer
// replaces the whole client when the token goes stale.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/ewhitmore/geotune/internal/observability"
)

// Client is an HTTP client for the catalog and player endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// bearerTransport injects the access token into every outgoing request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

// NewClient constructs a catalog client for the given access token. Requests
// are traced via otelhttp and bounded by timeout.
func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger, metrics observability.MetricsRegistry) *Client {
	transport := &bearerTransport{
		token: accessToken,
		base:  otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		metrics:    metrics,
	}
}

// statusError reports a non-2xx upstream response.
type statusError struct {
	Operation string
	Code      int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("spotify %s: status %d", e.Operation, e.Code)
}

// do issues the request, records call latency under the operation label and
// decodes a JSON body into out when out is non-nil. A 204 leaves out
// untouched. Non-2xx statuses become a statusError.
func (c *Client) do(req *http.Request, operation string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RecordCatalogCallLatency(operation, time.Since(start))
	if err != nil {
		return fmt.Errorf("spotify %s: %w", operation, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("catalog call failed",
			zap.String("operation", operation),
			zap.Int("status", resp.StatusCode))
		return &statusError{Operation: operation, Code: resp.StatusCode}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify %s: decode: %w", operation, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("spotify %s: %w", operation, err)
	}
	return c.do(req, operation, out)
}
