package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/golinks/internal/linkdir"
)

// MemoryStore is an in-memory implementation of linkdir.Repository and
// linkdir.UserRepository, used for local operation and tests. A single
// mutex makes Create insert-only with one winner and Increment lose no
// updates under concurrent resolutions.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[linkdir.Key]*linkdir.Link
	users map[string]struct{}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[linkdir.Key]*linkdir.Link),
		users: make(map[string]struct{}),
	}
}

func (m *MemoryStore) Get(_ context.Context, key linkdir.Key) (*linkdir.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[key]
	if !ok {
		return nil, linkdir.ErrNotFound
	}

	cp := *link

	return &cp, nil
}

func (m *MemoryStore) Create(_ context.Context, link *linkdir.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Key]; ok {
		return linkdir.ErrExists
	}

	cp := *link
	m.links[link.Key] = &cp

	return nil
}

func (m *MemoryStore) SetTarget(_ context.Context, key linkdir.Key, target string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[key]
	if !ok {
		return linkdir.ErrNotFound
	}

	link.Target = target
	link.UpdatedAt = updatedAt

	return nil
}

func (m *MemoryStore) SetOwner(_ context.Context, key linkdir.Key, owner string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[key]
	if !ok {
		return linkdir.ErrNotFound
	}

	link.Owner = owner
	link.UpdatedAt = updatedAt

	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key linkdir.Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[key]; !ok {
		return false, nil
	}

	delete(m.links, key)

	return true, nil
}

func (m *MemoryStore) Increment(_ context.Context, key linkdir.Key) (*linkdir.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[key]
	if !ok {
		return nil, linkdir.ErrNotFound
	}

	link.Clicks++
	cp := *link

	return &cp, nil
}

func (m *MemoryStore) ListByOwner(_ context.Context, owner string) ([]*linkdir.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var links []*linkdir.Link

	for _, link := range m.links {
		if link.Owner == owner {
			cp := *link
			links = append(links, &cp)
		}
	}

	return links, nil
}

func (m *MemoryStore) FindOrCreate(_ context.Context, id string) (*linkdir.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[id] = struct{}{}

	return &linkdir.User{ID: id}, nil
}

func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[id]

	return ok, nil
}

// Compile-time checks.
var (
	_ linkdir.Repository     = (*MemoryStore)(nil)
	_ linkdir.UserRepository = (*MemoryStore)(nil)
)
