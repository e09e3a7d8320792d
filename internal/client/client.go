// Package client talks to the lead API over bearer-authenticated JSON.
// Every lead it returns has been through model.Normalize.
package client

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
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shakilbd009/lead-finder/internal/model"
)

const maxResponseBytes = 4 << 20 // 4 MB

var (
	// ErrUnauthorized means the token is missing or expired; callers send
	// the user back to login.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type TokenSource interface {
	Token() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(reqPerSec float64, burst int) Option {
	return func(c *Client) {
		if reqPerSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(reqPerSec), max(burst, 1))
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	log     *slog.Logger
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	tok := resp.Token
	if tok == "" {
		tok = resp.AccessToken
	}
	if tok == "" {
		return "", errors.New("login: response carried no token")
	}
	return tok, nil
}

// ListLeads returns every lead. Items that are not JSON objects are skipped.
func (c *Client) ListLeads(ctx context.Context) ([]model.Lead, error) {
	var resp struct {
		Output []any `json:"output"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/leads", nil, &resp); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]model.Lead, 0, len(resp.Output))
	for _, item := range resp.Output {
		if m, ok := item.(map[string]any); ok {
			leads = append(leads, model.Normalize(m))
		}
	}
	return leads, nil
}

func (c *Client) GetLead(ctx context.Context, id string) (model.Lead, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, leadPath(id), nil, &raw); err != nil {
		return model.Lead{}, fmt.Errorf("get lead %s: %w", id, err)
	}
	if raw == nil {
		return model.Lead{}, fmt.Errorf("get lead %s: empty response", id)
	}
	return model.Normalize(raw), nil
}

// UpdateLead sends a partial update and returns the server's full record.
func (c *Client) UpdateLead(ctx context.Context, id string, patch model.Patch) (model.Lead, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodPut, leadPath(id), patch, &raw); err != nil {
		return model.Lead{}, fmt.Errorf("update lead %s: %w", id, err)
	}
	if raw == nil {
		return model.Lead{}, fmt.Errorf("update lead %s: empty response", id)
	}
	return model.Normalize(raw), nil
}

type createBody struct {
	Position string `json:"position"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Tags     string `json:"tags"`
	Status   string `json:"status"`
	Platform string `json:"platform,omitempty"`
}

// CreateLead saves a search or scrape result as a lead. The endpoint takes
// tags comma-joined.
func (c *Client) CreateLead(ctx context.Context, req model.CreateRequest) (model.Lead, error) {
	if err := req.Validate(); err != nil {
		return model.Lead{}, err
	}
	status := req.Status
	if status == "" {
		status = string(model.StatusNew)
	}
	body := createBody{
		Position: req.Position,
		Company:  req.Company,
		Location: req.Location,
		URL:      req.URL,
		Tags:     model.JoinList(req.Tags),
		Status:   status,
		Platform: req.Platform,
	}
	var raw map[string]any
	if err := c.do(ctx, http.MethodPost, "/api/leads", body, &raw); err != nil {
		return model.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	if raw == nil {
		return model.Lead{}, errors.New("create lead: empty response")
	}
	return model.Normalize(raw), nil
}

func (c *Client) DeleteLead(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, leadPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	return nil
}

func leadPath(id string) string {
	return "/api/lead/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, 64<<10))
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return s
	}
	return "request failed"
}
