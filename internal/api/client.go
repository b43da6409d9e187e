// Package api is the HTTP client gateway for the Moim backend. Every
// feature component talks to the server through it; authorization travels
// on the underlying http.Client (an oauth2 token-source client), not here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// StatusCode satisfies report.StatusClassifier.
func (e *Error) StatusCode() int { return e.Status }

// Client wraps the Moim REST API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient creates an API client. httpClient is expected to attach the
// bearer token; pass http.DefaultClient for unauthenticated calls.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: u, http: httpClient}, nil
}

// BaseURL reports the configured backend address.
func (c *Client) BaseURL() string { return c.base.String() }

// do issues one request. A non-nil body is JSON-encoded (DELETE included:
// category and schedule deletes carry reassignment intent in the body).
// A non-nil out receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

// decodeError extracts the backend's error message, which arrives either as
// {"errorMessage": ...} or as plain text.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		ErrorMessage string `json:"errorMessage"`
		Message      string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(data, &payload) == nil {
		if payload.ErrorMessage != "" {
			msg = payload.ErrorMessage
		} else {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPut, path, query, body, out)
}

func (c *Client) delete(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, body, out)
}
