package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tmwangi/kitabu/internal/logger"
)

// DefaultBaseURL matches the dev server's default port
const DefaultBaseURL = "http://localhost:8000"

// TokenSource supplies the bearer token for outgoing requests. Clear is
// called when the server answers 401 so a dead token doesn't stick around.
type TokenSource interface {
	Token() string
	Clear() error
}

// Error is a non-2xx backend response with the server's message extracted
// from the JSON body when present
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 backend response
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*Error)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// Client is the shared HTTP transport for all gateways: JSON in/out, a
// request timeout, and bearer-token injection from the token source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// NewClient creates a client for the given backend. tokens may be nil for
// unauthenticated use.
func NewClient(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}

		respBody, _ := io.ReadAll(resp.Body)
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else {
				apiErr.Message = payload.Message
			}
		}

		// A rejected token is dead weight; drop it so the next run
		// bootstraps anonymous instead of retrying it
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			_ = c.tokens.Clear()
		}

		logger.Debug("Request failed",
			logger.F("method", method),
			logger.F("path", path),
			logger.F("status", resp.StatusCode))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
