package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/golinks/internal/linkdir"
	"go.uber.org/zap"
)

// ErrNotAuthorized indicates no candidate identifier matched the policy.
// It is a denial, not a backend failure; callers must be able to tell
// "denied" from "backend unavailable".
var ErrNotAuthorized = errors.New("not authorized")

// Verifier turns raw identity claims into verified users: it runs the
// policy over the candidates and upserts a user record for the match.
type Verifier struct {
	users  linkdir.UserRepository
	policy Policy
	logger *zap.Logger
}

// NewVerifier creates a verifier for the given policy.
func NewVerifier(users linkdir.UserRepository, policy Policy, logger *zap.Logger) *Verifier {
	return &Verifier{
		users:  users,
		policy: policy,
		logger: logger,
	}
}

// Policy returns the configured authorization policy.
func (v *Verifier) Policy() Policy {
	return v.policy
}

// Verify returns the verified user for the first allowed candidate, or
// ErrNotAuthorized when none match. A user-store failure propagates as a
// distinct hard error.
func (v *Verifier) Verify(ctx context.Context, candidates []string) (*linkdir.User, error) {
	id, ok := FindVerifiedID(candidates, v.policy)
	if !ok {
		v.logger.Info("verification denied", zap.Strings("candidates", candidates))

		return nil, ErrNotAuthorized
	}

	user, err := v.users.FindOrCreate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find or create user %s: %w", id, err)
	}

	v.logger.Info("user verified", zap.String("user", user.ID))

	return user, nil
}
