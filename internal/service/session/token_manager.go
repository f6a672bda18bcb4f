package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
)

// TokenKey is the device storage key holding the auth token.
const TokenKey = "jwt"

type tokenManager struct {
	kv     storage.Store
	parser *jwt.Parser
	now    func() time.Time
}

func newTokenManager(kv storage.Store) *tokenManager {
	return &tokenManager{
		kv:     kv,
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (m *tokenManager) Save(ctx context.Context, token string) error {
	return m.kv.Set(ctx, TokenKey, token)
}

// Load returns the stored token, or "" when none is stored or the stored JWT
// has expired.
func (m *tokenManager) Load(ctx context.Context) (string, error) {
	token, err := m.kv.Get(ctx, TokenKey)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if m.expired(token) {
		return "", nil
	}
	return token, nil
}

func (m *tokenManager) Clear(ctx context.Context) error {
	if err := m.kv.Delete(ctx, TokenKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// expired only inspects the exp claim. Tokens that are not JWTs never expire
// here; the content API stays the authority on validity.
func (m *tokenManager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := m.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !m.now().Before(exp.Time)
}
