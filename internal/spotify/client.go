// Package spotify is a minimal Spotify Web API client covering OAuth and
// the player endpoints the playback trigger uses.
package spotify

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
	"sync"
	"time"
)

// BaseURL is the Spotify Web API base URL.
const BaseURL = "https://api.spotify.com/v1"

// ErrNotAuthenticated is returned when no token has been stored.
var ErrNotAuthenticated = errors.New("spotify: not authenticated")

// Client is a Spotify API client. Requests are made once; failures are
// returned to the caller, never retried.
type Client struct {
	httpClient *http.Client
	oauth      *OAuthConfig
	store      TokenStore
	baseURL    string

	mu    sync.Mutex
	token *Token
}

// NewClient creates a client that reads and refreshes its token via store.
func NewClient(oauth *OAuthConfig, store TokenStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		oauth:      oauth,
		store:      store,
		baseURL:    BaseURL,
	}
}

// SetBaseURL points the client at a different API host, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// LoadToken loads the token from the store.
func (c *Client) LoadToken() error {
	token, err := c.store.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetToken sets and persists the current token.
func (c *Client) SetToken(token *Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.store.Save(token)
}

// HasToken returns true if there's any token, even an expired one.
func (c *Client) HasToken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil
}

// accessToken returns the current access token, refreshing it if expired.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return "", ErrNotAuthenticated
	}
	if !c.token.IsExpired() {
		return c.token.AccessToken, nil
	}

	fresh, err := c.oauth.RefreshAccessToken(ctx, c.token.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	// Spotify may omit the refresh token when it is unchanged.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = c.token.RefreshToken
	}
	c.token = fresh
	if err := c.store.Save(fresh); err != nil {
		slog.Warn("spotify: failed to persist refreshed token", "err", err)
	}
	return fresh.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) put(ctx context.Context, path string, body any) error {
	return c.request(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) request(ctx context.Context, method, path string, body, result any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("spotify: request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	slog.Debug("spotify: response", "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.ErrorInfo.Message == "" {
			apiErr.ErrorInfo.Status = resp.StatusCode
			apiErr.ErrorInfo.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if resp.StatusCode == http.StatusNoContent || result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// APIError represents a Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason,omitempty"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Spotify API error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

// IsNoActiveDeviceError reports whether err is Spotify's 404 for a missing
// playback device.
func IsNoActiveDeviceError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorInfo.Status == http.StatusNotFound
}

// withDevice appends device_id to path when set.
func withDevice(path, deviceID string) string {
	if deviceID == "" {
		return path
	}
	return path + "?" + url.Values{"device_id": {deviceID}}.Encode()
}
