package storage

import (
	"context"
	"sync"

	"brewhaha/internal/domain"
)

// Memory is an in-process Repository. Contents do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	devices map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{devices: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, deviceID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.devices[deviceID][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, deviceID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.devices[deviceID] == nil {
		m.devices[deviceID] = make(map[string]string)
	}
	m.devices[deviceID][key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, deviceID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.devices[deviceID]
	if _, ok := keys[key]; !ok {
		return domain.ErrNotFound
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(m.devices, deviceID)
	}
	return nil
}
