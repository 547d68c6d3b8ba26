package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edvin/keyhub/internal/model"
)

// Client talks to a running keyhub API on behalf of keyctl commands.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client from a saved profile.
func NewClient(p *Profile) *Client {
	return &Client{
		baseURL: p.BaseURL,
		token:   p.Token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ValidationResult mirrors the /validate-key response.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	KeyInfo *model.KeyInfo `json:"keyInfo,omitempty"`
}

// Summary mirrors the /summarize response.
type Summary struct {
	Summary   string   `json:"summary"`
	CoolFacts []string `json:"cool_facts"`
}

// KeyParams carries the create/update request body for a key.
type KeyParams struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	MonthlyLimit *int   `json:"monthlyLimit,omitempty"`
}

// ListKeys fetches all keys for the logged-in user.
func (c *Client) ListKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	err := c.do(ctx, http.MethodGet, "/api/v1/keys", nil, nil, &keys)
	return keys, err
}

// CreateKey issues a new key.
func (c *Client) CreateKey(ctx context.Context, params KeyParams) (*model.APIKey, error) {
	var key model.APIKey
	if err := c.do(ctx, http.MethodPost, "/api/v1/keys", nil, params, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// UpdateKey changes a key's metadata.
func (c *Client) UpdateKey(ctx context.Context, id string, params KeyParams) (*model.APIKey, error) {
	var key model.APIKey
	if err := c.do(ctx, http.MethodPut, "/api/v1/keys/"+id, nil, params, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey deletes a key by ID.
func (c *Client) DeleteKey(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/keys/"+id, nil, nil, nil)
}

// ValidateKey checks a key against the public validation endpoint.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) (*ValidationResult, error) {
	body := map[string]string{"apiKey": apiKey}

	var result ValidationResult
	err := c.do(ctx, http.MethodPost, "/validate-key", nil, body, &result)
	if err != nil {
		// 401 carries a well-formed {"valid": false} body.
		var apiErr *APIError
		if isAPIError(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return &ValidationResult{Valid: false}, nil
		}
		return nil, err
	}
	return &result, nil
}

// Summarize asks the API to summarize a GitHub repository's README.
// The key presented here is an issued API key, not the session token.
func (c *Client) Summarize(ctx context.Context, apiKey, githubURL string) (*Summary, error) {
	body := map[string]string{"githubUrl": githubURL}
	headers := map[string]string{"x-api-key": apiKey}

	var summary Summary
	if err := c.do(ctx, http.MethodPost, "/summarize", headers, body, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func isAPIError(err error, target **APIError) bool {
	e, ok := err.(*APIError)
	if ok {
		*target = e
	}
	return ok
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(data, &errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
