// Package preference persists the dark/light display preference of a
// visitor in a small key-value store.
package preference

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// DarkModeKey is the fixed key the preference is stored under.
const DarkModeKey = "darkMode"

// Store is a namespaced string key-value slot.
type Store interface {
	Get(ctx context.Context, namespace, key string) (value string, ok bool, err error)
	Set(ctx context.Context, namespace, key, value string) error
}

// DarkMode is one visitor's display preference. It is read once when
// loaded and written back on every change.
type DarkMode struct {
	mu        sync.Mutex
	store     Store
	namespace string
	enabled   bool
}

// Load reads the preference for namespace. A missing value, or any value
// other than "false", means dark mode is on.
func Load(ctx context.Context, store Store, namespace string) (*DarkMode, error) {
	value, ok, err := store.Get(ctx, namespace, DarkModeKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", DarkModeKey, err)
	}
	return &DarkMode{
		store:     store,
		namespace: namespace,
		enabled:   !ok || value != "false",
	}, nil
}

// Enabled reports whether dark mode is on.
func (d *DarkMode) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Set changes the preference and saves it.
func (d *DarkMode) Set(ctx context.Context, enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, enabled)
}

// Toggle flips the preference, saves it and returns the new value.
func (d *DarkMode) Toggle(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.save(ctx, !d.enabled); err != nil {
		return d.enabled, err
	}
	return d.enabled, nil
}

func (d *DarkMode) save(ctx context.Context, enabled bool) error {
	if err := d.store.Set(ctx, d.namespace, DarkModeKey, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("save %s: %w", DarkModeKey, err)
	}
	d.enabled = enabled
	return nil
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[namespace+"/"+key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[namespace+"/"+key] = value
	return nil
}
