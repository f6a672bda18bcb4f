// Package payment exchanges card details for single-use tokens with a
// Stripe-compatible tokens endpoint.
package payment

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"

	"brewhaha/internal/domain"
)

type Client struct {
	api        *client.API
	configured bool
	logger     *zap.Logger
}

// New builds a tokenizer against baseURL (e.g. https://api.stripe.com) using
// the publishable key.
func New(baseURL, publishableKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(strings.TrimRight(baseURL, "/")),
		HTTPClient:        httpClient,
		LeveledLogger:     logger.Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return &Client{
		api:        client.New(publishableKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend}),
		configured: publishableKey != "",
		logger:     logger,
	}
}

// CreateToken returns a single-use token for card. Every failure is a
// *domain.TokenizationError.
func (c *Client) CreateToken(ctx context.Context, card domain.PaymentCard) (string, error) {
	if !c.configured {
		return "", &domain.TokenizationError{Message: "payment is not configured"}
	}
	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(strings.ReplaceAll(card.Number, " ", "")),
			ExpMonth: stripe.String(strconv.Itoa(card.ExpMonth)),
			ExpYear:  stripe.String(strconv.Itoa(card.ExpYear)),
			CVC:      stripe.String(card.CVC),
		},
	}
	params.Context = ctx

	tok, err := c.api.Tokens.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Msg != "" {
			c.logger.Info("payment: card rejected", zap.String("type", string(serr.Type)), zap.String("code", string(serr.Code)))
			return "", &domain.TokenizationError{Message: serr.Msg, Err: err}
		}
		c.logger.Warn("payment: token request failed", zap.Error(err))
		return "", &domain.TokenizationError{Err: err}
	}
	if tok.ID == "" {
		return "", &domain.TokenizationError{Message: "payment: no token in response"}
	}
	return tok.ID, nil
}
