package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"brewhaha/internal/domain"
)

// Source is the remote catalog. Brand returns domain.ErrNotFound for unknown ids.
type Source interface {
	Brands(ctx context.Context) ([]domain.Brand, error)
	SearchBrands(ctx context.Context, term string) ([]domain.Brand, error)
	Brand(ctx context.Context, id string) (*domain.Brand, error)
}

type Service struct {
	source Source
	logger *zap.Logger
}

func New(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

func (s *Service) Brands(ctx context.Context) ([]domain.Brand, error) {
	return s.source.Brands(ctx)
}

// SearchBrands filters brands by name substring. A blank term lists all brands.
func (s *Service) SearchBrands(ctx context.Context, term string) ([]domain.Brand, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.source.Brands(ctx)
	}
	return s.source.SearchBrands(ctx, term)
}

func (s *Service) Brand(ctx context.Context, id string) (*domain.Brand, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	return s.source.Brand(ctx, id)
}

// Brew looks up one brew of a brand.
func (s *Service) Brew(ctx context.Context, brandID, brewID string) (*domain.Brew, error) {
	brand, err := s.Brand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	for _, b := range brand.Brews {
		if b.ID == brewID {
			brew := b
			return &brew, nil
		}
	}
	return nil, domain.ErrNotFound
}

// LoadBrands is the initial listing load. Failures are logged and the listing
// degrades to empty.
func (s *Service) LoadBrands(ctx context.Context) []domain.Brand {
	brands, err := s.source.Brands(ctx)
	if err != nil {
		s.logger.Warn("catalog: initial brand load failed", zap.Error(err))
		return []domain.Brand{}
	}
	if brands == nil {
		return []domain.Brand{}
	}
	return brands
}
