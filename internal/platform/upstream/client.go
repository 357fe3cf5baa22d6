package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Envelope is the backend's uniform response shape:
// {success, message?, token?, count?, total?, pagination?, data?}.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Token      string          `json:"token"`
	Count      int             `json:"count"`
	Total      int             `json:"total"`
	Pagination *PageInfo       `json:"pagination"`
	Data       json.RawMessage `json:"data"`
}

// PageInfo mirrors the backend pagination block.
type PageInfo struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
}

// Decode unmarshals the data payload into dest, failing with a SchemaError
// on mismatch.
func (e *Envelope) Decode(path string, dest any) error {
	if len(e.Data) == 0 {
		return &SchemaError{Path: path, Err: fmt.Errorf("missing data field")}
	}
	dec := json.NewDecoder(bytes.NewReader(e.Data))
	if err := dec.Decode(dest); err != nil {
		return &SchemaError{Path: path, Err: err}
	}
	return nil
}

// Client issues authenticated requests against the LIMS API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client for the given base URL
// (e.g. http://localhost:5000/api).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient overrides the transport, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values) (*Envelope, error) {
	return c.do(ctx, token, http.MethodGet, path, query, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, token, path string, body any) (*Envelope, error) {
	return c.do(ctx, token, http.MethodPost, path, nil, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, token, path string, body any) (*Envelope, error) {
	return c.do(ctx, token, http.MethodPut, path, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, token, path string) (*Envelope, error) {
	return c.do(ctx, token, http.MethodDelete, path, nil, nil)
}

// PostRaw performs a POST request against an endpoint that does not follow
// the envelope convention and returns the raw response body. A 401 still
// maps to ErrUnauthorized and any other non-2xx status to an APIError.
func (c *Client) PostRaw(ctx context.Context, token, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("upstream: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: POST %s: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var env Envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return raw, nil
}

// do performs exactly one attempt: no retry, no backoff.
func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body any) (*Envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("upstream: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read %s: %w", path, err)
	}

	var env Envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode == http.StatusUnauthorized {
				return nil, ErrUnauthorized
			}
			return nil, &SchemaError{Path: path, Err: err}
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%s: %w", env.Message, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 || !env.Success {
		status := resp.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		return nil, &APIError{Status: status, Message: env.Message}
	}
	return &env, nil
}
