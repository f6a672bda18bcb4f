package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
)

type stubKV struct {
	values    map[string]string
	getErr    error
	setErr    error
	deleteErr error
	setCalls  int
}

func newStubKV() *stubKV {
	return &stubKV{values: map[string]string{}}
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.values[key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.values, key)
	return nil
}

func brew(id, price string) domain.Brew {
	return domain.Brew{ID: id, Name: "Brew " + id, Price: decimal.RequireFromString(price)}
}

func TestGetEmptyWhenNothingStored(t *testing.T) {
	s := NewStore(newStubKV())
	items, err := s.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestGetEmptyOnCorruptSnapshot(t *testing.T) {
	kv := newStubKV()
	kv.values[StorageKey] = "{not json"
	items, err := NewStore(kv).Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestGetDropsLinesWithoutIDOrQuantity(t *testing.T) {
	kv := newStubKV()
	kv.values[StorageKey] = `[{"id":"1","name":"IPA","price":"5.5","quantity":2},{"id":"","quantity":1},{"id":"3","quantity":0}]`
	items, err := NewStore(kv).Get(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "1", items[0].ID)
	require.True(t, items[0].Price.Equal(decimal.RequireFromString("5.5")))
}

func TestGetPropagatesStorageFailure(t *testing.T) {
	kv := newStubKV()
	kv.getErr = errors.New("disk gone")
	_, err := NewStore(kv).Get(context.Background())
	require.Error(t, err)
}

func TestSetThenGetRoundTripsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newStubKV())
	in := []domain.LineItem{
		domain.LineItemFromBrew(brew("b", "1.00")),
		domain.LineItemFromBrew(brew("a", "2.00")),
	}
	require.NoError(t, s.Set(ctx, in))
	out, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "b", out[0].ID)
	require.Equal(t, "a", out[1].ID)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := newStubKV()
	s := NewStore(kv)
	require.NoError(t, s.Set(ctx, []domain.LineItem{domain.LineItemFromBrew(brew("1", "1"))}))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	items, err := s.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestClearPropagatesOtherErrors(t *testing.T) {
	kv := newStubKV()
	kv.deleteErr = errors.New("locked")
	require.Error(t, NewStore(kv).Clear(context.Background()))
}

func TestAddPersistsAndIncrements(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.ForDevice(storage.NewMemory(), "device"))

	_, err := s.Add(ctx, brew("1", "5.50"))
	require.NoError(t, err)
	items, err := s.Add(ctx, brew("1", "5.50"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)

	stored, err := s.Get(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 2, stored[0].Quantity)
	require.True(t, stored[0].Price.Equal(decimal.RequireFromString("5.5")))
}

func TestAddRejectsInvalidBrew(t *testing.T) {
	kv := newStubKV()
	s := NewStore(kv)

	_, err := s.Add(context.Background(), brew("", "1"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = s.Add(context.Background(), brew("1", "-1"))
	require.ErrorAs(t, err, &verr)
	require.Zero(t, kv.setCalls)
}

func TestAddDoesNotPersistWhenWriteFails(t *testing.T) {
	kv := newStubKV()
	kv.setErr = errors.New("quota exceeded")
	_, err := NewStore(kv).Add(context.Background(), brew("1", "1"))
	require.Error(t, err)
	require.Empty(t, kv.values)
}

func TestRemoveAndChangeQuantity(t *testing.T) {
	ctx := context.Background()
	s := NewStore(newStubKV())
	_, _ = s.Add(ctx, brew("1", "1"))
	_, _ = s.Add(ctx, brew("2", "2"))

	items, err := s.ChangeQuantity(ctx, "2", 5)
	require.NoError(t, err)
	require.Equal(t, 5, items[1].Quantity)

	_, err = s.ChangeQuantity(ctx, "missing", 1)
	require.ErrorIs(t, err, domain.ErrNotFound)

	items, err = s.ChangeQuantity(ctx, "2", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = s.Remove(ctx, "1")
	require.NoError(t, err)
	require.Empty(t, items)
}
