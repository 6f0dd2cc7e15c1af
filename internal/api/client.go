// Package api implements the gateway client for the EPE backend REST API.
// It wraps the three outbound call shapes the console needs (read, JSON
// write, multipart write) with bearer-token injection and uniform error
// translation.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// APIError is returned when an endpoint responds with a non-2xx status.
// The body is kept verbatim so the failing view can surface the backend's
// own detail message.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.Status, e.Body)
}

// Client performs authenticated calls against the EPE backend.
//
// The underlying http.Client carries no timeout on purpose: a hung request
// hangs only the view region that issued it, and the transport's own
// connection timeout is the sole bound. Nothing is retried.
type Client struct {
	baseURL    string
	token      func() string
	httpClient *http.Client
	requestLog bool
}

// NewClient creates a gateway client. token is consulted on every request
// so a login or logout takes effect without rebuilding the client.
func NewClient(baseURL string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// SetRequestLog toggles per-request logging.
func (c *Client) SetRequestLog(enabled bool) { c.requestLog = enabled }

// SetBaseURL points the client at a different backend root. Requests
// already in flight keep the URL they were built with.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Login exchanges operator credentials for a bearer token. The endpoint
// takes OAuth2-style form fields; the username is the operator's email.
// A non-2xx response is an auth failure and leaves the session untouched.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.send(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("login response missing access_token")
	}
	return resp.AccessToken, nil
}

// Get performs an authenticated GET and returns the raw JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

// PostJSON performs an authenticated POST with a JSON-encoded payload.
func (c *Client) PostJSON(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.PostRaw(ctx, path, body)
}

// PostRaw performs an authenticated POST with a pre-encoded JSON body.
func (c *Client) PostRaw(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

// PostMultipart performs an authenticated multipart POST. Used only by the
// ad-hoc test-analysis upload.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, content []byte) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(content); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req)
}

// send executes the request with auth-header injection and translates
// non-2xx responses into *APIError.
func (c *Client) send(req *http.Request) (json.RawMessage, error) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.requestLog {
		log.WithFields(log.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
		}).Debug("gateway request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return json.RawMessage(body), nil
}
