// Package strapi is a client for the content API that owns the catalog,
// accounts, orders and transactional email.
package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"brewhaha/internal/domain"
)

const maxBodyBytes = 4 * 1024 * 1024

type tokenKey struct{}

// WithToken returns a context whose requests carry token as a bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New returns a client for the API at baseURL. A nil httpClient gets a client
// with a 15s timeout.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type authResponse struct {
	JWT string `json:"jwt"`
}

// Login exchanges an identifier (username or email) and password for a token.
func (c *Client) Login(ctx context.Context, identifier, password string) (string, error) {
	var out authResponse
	body := map[string]string{"identifier": identifier, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/local", body, &out); err != nil {
		return "", err
	}
	if out.JWT == "" {
		return "", &domain.RemoteRequestError{Op: "login", StatusCode: http.StatusOK, Message: "no token in response"}
	}
	return out.JWT, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	var out authResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.do(ctx, "register", http.MethodPost, "/auth/local/register", body, &out); err != nil {
		return "", err
	}
	if out.JWT == "" {
		return "", &domain.RemoteRequestError{Op: "register", StatusCode: http.StatusOK, Message: "no token in response"}
	}
	return out.JWT, nil
}

// CreateOrder stores the order entry. The caller's token travels in ctx.
func (c *Client) CreateOrder(ctx context.Context, order domain.Order) error {
	return c.do(ctx, "create order", http.MethodPost, "/orders", order, nil)
}

func (c *Client) SendEmail(ctx context.Context, email domain.Email) error {
	return c.do(ctx, "send email", http.MethodPost, "/email", email, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &domain.RemoteRequestError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &domain.RemoteRequestError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("strapi: request failed", zap.String("op", op), zap.Error(err))
		return &domain.RemoteRequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.RemoteRequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("strapi: request",
		zap.String("op", op),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw)
		if msg == "" {
			msg = fmt.Sprintf("%s: HTTP %d", op, resp.StatusCode)
		}
		return &domain.RemoteRequestError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.RemoteRequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type errorPayload struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type nestedMessages []struct {
	Messages []struct {
		Message string `json:"message"`
	} `json:"messages"`
}

// errorMessage extracts the human-readable message from an error body. The API
// answers with a plain string message, a nested list of messages, or a
// GraphQL errors array depending on the endpoint.
func errorMessage(raw []byte) string {
	var p errorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	if msg := rawMessage(p.Message); msg != "" {
		return msg
	}
	for _, e := range p.Errors {
		if e.Message != "" {
			return e.Message
		}
	}
	return rawMessage(p.Error)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var nested nestedMessages
	if err := json.Unmarshal(raw, &nested); err == nil {
		var parts []string
		for _, n := range nested {
			for _, m := range n.Messages {
				if m.Message != "" {
					parts = append(parts, m.Message)
				}
			}
		}
		return strings.Join(parts, " ")
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}
