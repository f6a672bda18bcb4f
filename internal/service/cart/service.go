package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"brewhaha/internal/domain"
	"brewhaha/internal/repository/storage"
)

// StorageKey is the device storage key holding the cart snapshot.
const StorageKey = "cart"

// Store persists the cart of one device.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Get returns the persisted cart, or an empty cart when nothing is stored or
// the snapshot cannot be decoded.
func (s *Store) Get(ctx context.Context) ([]domain.LineItem, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.LineItem{}, nil
		}
		return nil, fmt.Errorf("read cart: %w", err)
	}
	return decode(raw), nil
}

// Set overwrites the persisted cart with items.
func (s *Store) Set(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

// Clear deletes the persisted cart. Clearing an absent cart is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Add puts one unit of brew into the persisted cart and returns the new cart.
func (s *Store) Add(ctx context.Context, brew domain.Brew) ([]domain.LineItem, error) {
	if strings.TrimSpace(brew.ID) == "" {
		return nil, domain.NewValidationError("brew id required")
	}
	if brew.Price.IsNegative() {
		return nil, domain.NewValidationError("price must not be negative")
	}
	return s.update(ctx, func(items []domain.LineItem) []domain.LineItem {
		return AddItem(items, brew)
	})
}

// Remove drops the line for id from the persisted cart.
func (s *Store) Remove(ctx context.Context, id string) ([]domain.LineItem, error) {
	return s.update(ctx, func(items []domain.LineItem) []domain.LineItem {
		return RemoveItem(items, id)
	})
}

// ChangeQuantity sets the quantity of the line for id; quantity <= 0 removes it.
func (s *Store) ChangeQuantity(ctx context.Context, id string, quantity int) ([]domain.LineItem, error) {
	items, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(items, id) < 0 {
		return nil, domain.ErrNotFound
	}
	updated := SetQuantity(items, id, quantity)
	if err := s.Set(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) update(ctx context.Context, fn func([]domain.LineItem) []domain.LineItem) ([]domain.LineItem, error) {
	items, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	updated := fn(items)
	if err := s.Set(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func decode(raw string) []domain.LineItem {
	var items []domain.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []domain.LineItem{}
	}
	out := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		out = append(out, item)
	}
	return out
}
