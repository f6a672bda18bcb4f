package storage

import (
	"context"
)

// Store is durable key-value storage scoped to a single device.
// Get returns domain.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Repository is key-value storage shared by many devices.
type Repository interface {
	Get(ctx context.Context, deviceID, key string) (string, error)
	Set(ctx context.Context, deviceID, key, value string) error
	Delete(ctx context.Context, deviceID, key string) error
}

// ForDevice narrows repo to the keys of one device.
func ForDevice(repo Repository, deviceID string) Store {
	return deviceStore{repo: repo, deviceID: deviceID}
}

type deviceStore struct {
	repo     Repository
	deviceID string
}

func (s deviceStore) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, s.deviceID, key)
}

func (s deviceStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, s.deviceID, key, value)
}

func (s deviceStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, s.deviceID, key)
}
