package linkdir

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the key has no stored link.
	ErrNotFound = errors.New("link not found")

	// ErrExists indicates an insert-only write hit an occupied key.
	ErrExists = errors.New("link already exists")

	// ErrForbidden indicates the caller does not own the link it tried to mutate.
	ErrForbidden = errors.New("link owned by another user")

	// ErrTargetEmpty and ErrTargetScheme are the two validation failures for
	// redirect targets. The calling UI displays different messages for each.
	ErrTargetEmpty  = errors.New("redirect target must not be empty")
	ErrTargetScheme = errors.New("redirect target protocol must be http:// or https://")
)

// IsInvalidTarget reports whether err is either target validation failure.
func IsInvalidTarget(err error) bool {
	return errors.Is(err, ErrTargetEmpty) || errors.Is(err, ErrTargetScheme)
}

// Link is a stored redirect record. Clicks only ever increases, and only
// through Repository.Increment.
type Link struct {
	Key       Key
	Target    string
	Owner     string
	Clicks    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a verified account identifier.
type User struct {
	ID string
}

// Repository defines storage operations for links. Implementations must
// guarantee per-key atomicity for Increment and at-most-one-winner
// semantics for Create; the Directory adds no locking of its own.
type Repository interface {
	Get(ctx context.Context, key Key) (*Link, error)

	// Create is insert-only: it returns ErrExists when the key is occupied
	// and never overwrites a prior record.
	Create(ctx context.Context, link *Link) error

	SetTarget(ctx context.Context, key Key, target string, updatedAt time.Time) error
	SetOwner(ctx context.Context, key Key, owner string, updatedAt time.Time) error

	// Delete reports whether a record was actually removed.
	Delete(ctx context.Context, key Key) (bool, error)

	// Increment atomically adds one click and returns the updated record,
	// so N concurrent increments of the same key always net to +N.
	Increment(ctx context.Context, key Key) (*Link, error)

	ListByOwner(ctx context.Context, owner string) ([]*Link, error)
}

// UserRepository defines storage operations for verified users.
type UserRepository interface {
	FindOrCreate(ctx context.Context, id string) (*User, error)
	Exists(ctx context.Context, id string) (bool, error)
}
