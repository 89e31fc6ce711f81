// Package nango talks to the Nango connection broker, which exchanges an
// opaque connection handle for a time-limited catalog access credential.
package nango

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Credential is the result of a successful exchange.
type Credential struct {
	AccessToken string
	Scopes      []string
}

// Client calls the broker's connection endpoint.
type Client struct {
	baseURL     string
	secretKey   string
	providerKey string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient constructs a broker client. timeout bounds every exchange call.
func NewClient(baseURL, secretKey, providerKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		secretKey:   secretKey,
		providerKey: providerKey,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// Configured reports whether a broker secret is present. An unconfigured
// broker leaves every connection permanently unavailable rather than
// crashing the service.
func (c *Client) Configured() bool {
	return c.secretKey != "" && c.secretKey != "your_secret_key_here"
}

type connectionResponse struct {
	Credentials struct {
		AccessToken string `json:"access_token"`
	} `json:"credentials"`
	Scopes []string `json:"scopes"`
}

// Exchange resolves a connection handle into an access credential.
func (c *Client) Exchange(ctx context.Context, handle string) (Credential, error) {
	if !c.Configured() {
		return Credential{}, fmt.Errorf("nango: broker secret not configured")
	}

	u := fmt.Sprintf("%s/connection/%s?provider_config_key=%s",
		c.baseURL, url.PathEscape(handle), url.QueryEscape(c.providerKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Credential{}, fmt.Errorf("nango: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("nango: exchange request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Credential{}, fmt.Errorf("nango: exchange http %d: %s", resp.StatusCode, string(body))
	}

	var out connectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Credential{}, fmt.Errorf("nango: decode response: %w", err)
	}
	if out.Credentials.AccessToken == "" {
		return Credential{}, fmt.Errorf("nango: exchange returned no credential")
	}

	return Credential{AccessToken: out.Credentials.AccessToken, Scopes: out.Scopes}, nil
}
