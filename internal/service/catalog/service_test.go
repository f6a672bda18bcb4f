package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"brewhaha/internal/domain"
)

type stubSource struct {
	brands     []domain.Brand
	err        error
	lastSearch string
	listCalls  int
}

func (s *stubSource) Brands(context.Context) ([]domain.Brand, error) {
	s.listCalls++
	return s.brands, s.err
}

func (s *stubSource) SearchBrands(_ context.Context, term string) ([]domain.Brand, error) {
	s.lastSearch = term
	return s.brands, s.err
}

func (s *stubSource) Brand(_ context.Context, id string) (*domain.Brand, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, b := range s.brands {
		if b.ID == id {
			brand := b
			return &brand, nil
		}
	}
	return nil, domain.ErrNotFound
}

func fixture() []domain.Brand {
	return []domain.Brand{{
		ID:   "b1",
		Name: "Hoppy Days",
		Brews: []domain.Brew{
			{ID: "w1", Name: "IPA", Price: decimal.RequireFromString("5.50")},
			{ID: "w2", Name: "Stout", Price: decimal.RequireFromString("3.25")},
		},
	}}
}

func TestSearchBlankTermListsAll(t *testing.T) {
	src := &stubSource{brands: fixture()}
	svc := New(src, nil)

	got, err := svc.SearchBrands(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, src.listCalls)
	require.Empty(t, src.lastSearch)
}

func TestSearchTrimsTerm(t *testing.T) {
	src := &stubSource{brands: fixture()}
	_, err := New(src, nil).SearchBrands(context.Background(), " hop ")
	require.NoError(t, err)
	require.Equal(t, "hop", src.lastSearch)
}

func TestBrew(t *testing.T) {
	svc := New(&stubSource{brands: fixture()}, nil)
	ctx := context.Background()

	brew, err := svc.Brew(ctx, "b1", "w2")
	require.NoError(t, err)
	require.Equal(t, "Stout", brew.Name)

	_, err = svc.Brew(ctx, "b1", "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Brew(ctx, "missing", "w1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Brand(ctx, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadBrandsDegradesToEmptyAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := New(&stubSource{err: errors.New("connection refused")}, zap.New(core))

	brands := svc.LoadBrands(context.Background())
	require.NotNil(t, brands)
	require.Empty(t, brands)
	require.Equal(t, 1, logs.FilterMessage("catalog: initial brand load failed").Len())
}

func TestLoadBrandsReturnsListing(t *testing.T) {
	brands := New(&stubSource{brands: fixture()}, nil).LoadBrands(context.Background())
	require.Len(t, brands, 1)
}
