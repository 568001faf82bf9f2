package auth_test

import (
	"context"

	"github.com/serroba/golinks/internal/linkdir"
)

// mockUsers is a controllable linkdir.UserRepository for tests.
type mockUsers struct {
	records map[string]struct{}

	findOrCreateErr error
	existsErr       error
}

func newMockUsers() *mockUsers {
	return &mockUsers{records: make(map[string]struct{})}
}

func (m *mockUsers) FindOrCreate(_ context.Context, id string) (*linkdir.User, error) {
	if m.findOrCreateErr != nil {
		return nil, m.findOrCreateErr
	}

	m.records[id] = struct{}{}

	return &linkdir.User{ID: id}, nil
}

func (m *mockUsers) Exists(_ context.Context, id string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}

	_, ok := m.records[id]

	return ok, nil
}
