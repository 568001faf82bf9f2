package handlers_test

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/golinks/internal/linkdir"
)

var errMock = errors.New("mock store error")

// mockRepo is a controllable linkdir.Repository for exercising error
// paths the memory store cannot produce.
type mockRepo struct {
	getErr       error
	createErr    error
	incrementErr error
	listErr      error

	link *linkdir.Link
}

func (m *mockRepo) Get(context.Context, linkdir.Key) (*linkdir.Link, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	return m.link, nil
}

func (m *mockRepo) Create(context.Context, *linkdir.Link) error { return m.createErr }

func (m *mockRepo) SetTarget(context.Context, linkdir.Key, string, time.Time) error {
	return nil
}

func (m *mockRepo) SetOwner(context.Context, linkdir.Key, string, time.Time) error {
	return nil
}

func (m *mockRepo) Delete(context.Context, linkdir.Key) (bool, error) { return true, nil }

func (m *mockRepo) Increment(context.Context, linkdir.Key) (*linkdir.Link, error) {
	if m.incrementErr != nil {
		return nil, m.incrementErr
	}

	return m.link, nil
}

func (m *mockRepo) ListByOwner(context.Context, string) ([]*linkdir.Link, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	return nil, nil
}
