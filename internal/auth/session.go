package auth

import (
	"context"
	"errors"

	"github.com/serroba/golinks/internal/linkdir"
	"go.uber.org/zap"
)

// ErrSessionInvalid indicates a session identity could not be
// reconstructed. Backend errors are deliberately downgraded to this
// outcome so a logged-in session fails closed instead of leaking raw
// store errors to the transport layer.
var ErrSessionInvalid = errors.New("session no longer valid")

// Codec serializes a verified user to a durable session token value and
// reconstructs it against the user store on each request. It is installed
// even with zero configured providers (open mode): reconstruction then
// depends purely on user existence.
type Codec struct {
	users  linkdir.UserRepository
	logger *zap.Logger
}

// NewCodec creates a session identity codec.
func NewCodec(users linkdir.UserRepository, logger *zap.Logger) *Codec {
	return &Codec{
		users:  users,
		logger: logger,
	}
}

// Serialize projects the user onto its durable identifier.
func (*Codec) Serialize(user *linkdir.User) string {
	return user.ID
}

// Deserialize reconstructs the user for a serialized identifier, checking
// that the user record still exists. Both a missing record and a store
// error yield ErrSessionInvalid.
func (c *Codec) Deserialize(ctx context.Context, id string) (*linkdir.User, error) {
	exists, err := c.users.Exists(ctx, id)
	if err != nil {
		c.logger.Warn("session user lookup failed",
			zap.String("user", id),
			zap.Error(err),
		)

		return nil, ErrSessionInvalid
	}

	if !exists {
		return nil, ErrSessionInvalid
	}

	return &linkdir.User{ID: id}, nil
}
