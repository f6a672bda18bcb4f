package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
)

// MissingFieldsMessage is shown when a sign-in or sign-up form is incomplete.
const MissingFieldsMessage = "Fill in all fields"

// AuthAPI exchanges credentials for a token with the content API.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	Register(ctx context.Context, username, email, password string) (string, error)
}

// CartClearer empties the device cart.
type CartClearer interface {
	Clear(ctx context.Context) error
}

// Service handles sign-in, sign-up and sign-out for one device.
type Service struct {
	auth   AuthAPI
	cart   CartClearer
	tokens *tokenManager
	logger *zap.Logger
}

func New(auth AuthAPI, kv storage.Store, cart CartClearer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		auth:   auth,
		cart:   cart,
		tokens: newTokenManager(kv),
		logger: logger,
	}
}

// SignIn authenticates with username (or email) and password and persists the
// returned token.
func (s *Service) SignIn(ctx context.Context, identifier, password string) (string, error) {
	if blank(identifier, password) {
		return "", domain.NewValidationError(MissingFieldsMessage)
	}
	token, err := s.auth.Login(ctx, strings.TrimSpace(identifier), password)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	s.logger.Info("session: signed in", zap.String("identifier", strings.TrimSpace(identifier)))
	return token, nil
}

// SignUp registers a new account and persists the returned token.
func (s *Service) SignUp(ctx context.Context, username, email, password string) (string, error) {
	if blank(username, email, password) {
		return "", domain.NewValidationError(MissingFieldsMessage)
	}
	token, err := s.auth.Register(ctx, strings.TrimSpace(username), strings.TrimSpace(email), password)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	s.logger.Info("session: signed up", zap.String("username", strings.TrimSpace(username)))
	return token, nil
}

// SignOut clears the cart and the token.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.cart.Clear(ctx); err != nil {
		return err
	}
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.logger.Info("session: signed out")
	return nil
}

// Token returns the stored auth token, or "" when signed out.
func (s *Service) Token(ctx context.Context) (string, error) {
	return s.tokens.Load(ctx)
}

func (s *Service) Authenticated(ctx context.Context) (bool, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
