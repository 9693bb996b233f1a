// Package api implements the gateway client for the remote mall REST API.
// Every request carries the stored bearer token when one is present. A 401
// response triggers exactly one token-refresh-and-retry; if the refresh
// itself fails the session is cleared and the caller must re-authenticate.
package api

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
	"time"

	"github.com/chungmin23/storefront/internal/storage"
)

var (
	// ErrUnreachable marks transport-level failures, distinct from
	// authorization failures so the UI can say "server unreachable"
	// instead of "please log in".
	ErrUnreachable = errors.New("server unreachable")

	// ErrSessionExpired is returned after a failed token refresh. The
	// stored session has been cleared; the user must log in again.
	ErrSessionExpired = errors.New("session expired")
)

// Error is a non-2xx response from the backend. Message carries the server's
// error text verbatim when the body provided one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client wraps HTTP calls to the mall backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   storage.Store
	log     *slog.Logger
}

// New creates a gateway client. baseURL includes the /api prefix.
func New(baseURL string, timeout time.Duration, store storage.Store, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		store:   store,
		log:     log,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	data, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, "application/json", data, out)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	data, err := encodeJSON(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, "application/json", data, out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, out)
}

// PostForm performs a POST request with a form-encoded body. The login
// endpoint expects this encoding rather than JSON.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil,
		"application/x-www-form-urlencoded", []byte(form.Encode()), out)
}

func encodeJSON(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}

// do executes one request with bearer injection and the single
// refresh-and-retry hop on 401. The body is kept as bytes so the retry can
// rebuild the request.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte, out any) error {
	resp, err := c.send(ctx, method, path, query, contentType, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := readError(resp)

		// Without a refresh token there is nothing to retry with; surface
		// the server's response (e.g. bad login credentials) as-is.
		if _, ok := c.store.Get(storage.KeyRefreshToken); !ok {
			return apiErr
		}

		if err := c.refresh(ctx); err != nil {
			c.clearSession()
			c.log.Warn("token refresh failed, session cleared", "error", err)
			return ErrSessionExpired
		}

		// Exactly one retry; a second 401 falls through as a plain error.
		resp, err = c.send(ctx, method, path, query, contentType, body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
	}

	if resp.StatusCode >= 400 {
		return readError(resp)
	}

	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send builds and executes a single HTTP request. The bearer token is read
// from storage on every attempt so a retry picks up refreshed credentials.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token, ok := c.store.Get(storage.KeyAccessToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpc.Do(req)
}

// refresh exchanges the stored refresh token for a new token pair and
// persists it. Uses a direct request so it cannot recurse into do.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken, ok := c.store.Get(storage.KeyRefreshToken)
	if !ok || refreshToken == "" {
		return errors.New("no refresh token stored")
	}

	query := url.Values{}
	query.Set("refreshToken", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/member/refresh?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	if token, ok := c.store.Get(storage.KeyAccessToken); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return errors.New("refresh response missing access token")
	}

	if err := c.store.Set(storage.KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if err := c.store.Set(storage.KeyRefreshToken, tokens.RefreshToken); err != nil {
		return err
	}

	c.log.Debug("access token refreshed")
	return nil
}

// clearSession drops all persisted credentials so no further request can
// carry a stale token.
func (c *Client) clearSession() {
	c.store.Delete(storage.KeyAccessToken)
	c.store.Delete(storage.KeyRefreshToken)
	c.store.Delete(storage.KeyUser)
}

// readError drains a non-2xx response into an *Error, preserving the
// server's message verbatim when the body carries one.
func readError(resp *http.Response) *Error {
	defer resp.Body.Close()

	apiErr := &Error{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else if body.Message != "" {
			apiErr.Message = body.Message
		}
	}

	return apiErr
}
