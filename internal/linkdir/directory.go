package linkdir

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Directory implements link business operations on top of a Repository:
// uniqueness on create, ownership checks on mutation, and atomic click
// counting on resolution. It trusts the caller-supplied owner identifier,
// which must come from the verification layer.
type Directory struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDirectory creates a new link directory.
func NewDirectory(repo Repository, logger *zap.Logger) *Directory {
	return &Directory{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// opError pairs a user-facing sentence with the error kind it represents,
// so handlers can branch on the kind while displaying Error() verbatim.
type opError struct {
	msg  string
	kind error
}

func (e *opError) Error() string { return e.msg }

func (e *opError) Unwrap() error { return e.kind }

func opErr(kind error, format string, args ...any) error {
	return &opError{msg: fmt.Sprintf(format, args...), kind: kind}
}

// ValidateTarget checks that a redirect target is a non-empty absolute
// http or https URL. It distinguishes the empty case from the wrong-scheme
// case because each gets its own user-facing message.
func ValidateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return ErrTargetEmpty
	}

	u, err := url.Parse(target)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrTargetScheme
	}

	return nil
}

// Create inserts a new link with zero clicks. The key must be unoccupied;
// a concurrent create of the same key has exactly one winner and the loser
// surfaces ErrExists, never a silently overwritten record.
func (d *Directory) Create(ctx context.Context, rawLink, target, owner string) (string, error) {
	key := NormalizeKey(rawLink)

	if err := ValidateTarget(target); err != nil {
		return "", err
	}

	now := d.now()
	link := &Link{
		Key:       key,
		Target:    target,
		Owner:     strings.ToLower(owner),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := d.repo.Create(ctx, link); err != nil {
		if errors.Is(err, ErrExists) {
			return "", opErr(ErrExists, "%s already exists", key.Relative())
		}

		return "", fmt.Errorf("create %s: %w", key.Relative(), err)
	}

	d.logger.Info("link created",
		zap.String("link", key.Relative()),
		zap.String("target", target),
		zap.String("owner", link.Owner),
	)

	return fmt.Sprintf("%s now redirects to %s", key.Relative(), target), nil
}

// Info returns the link without mutating it.
func (d *Directory) Info(ctx context.Context, rawLink string) (*Link, error) {
	key := NormalizeKey(rawLink)

	link, err := d.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, opErr(ErrNotFound, "%s does not exist", key.Relative())
		}

		return nil, fmt.Errorf("get %s: %w", key.Relative(), err)
	}

	return link, nil
}

// ResolveAndCount returns the link with its click count incremented as a
// side effect. No increment happens when the key is absent.
func (d *Directory) ResolveAndCount(ctx context.Context, rawLink string) (*Link, error) {
	key := NormalizeKey(rawLink)

	link, err := d.repo.Increment(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, opErr(ErrNotFound, "%s does not exist", key.Relative())
		}

		return nil, fmt.Errorf("resolve %s: %w", key.Relative(), err)
	}

	return link, nil
}

// UpdateTarget replaces the link's redirect target. Setting the current
// target again is a no-op that leaves the record untouched.
func (d *Directory) UpdateTarget(ctx context.Context, rawLink, newTarget, owner string) (string, error) {
	key := NormalizeKey(rawLink)

	if err := ValidateTarget(newTarget); err != nil {
		return "", err
	}

	link, err := d.ownedLink(ctx, key, owner)
	if err != nil {
		return "", err
	}

	if link.Target == newTarget {
		return fmt.Sprintf("the target of %s remains the same", key.Relative()), nil
	}

	if err := d.repo.SetTarget(ctx, key, newTarget, d.now()); err != nil {
		return "", fmt.Errorf("update target of %s: %w", key.Relative(), err)
	}

	d.logger.Info("link target updated",
		zap.String("link", key.Relative()),
		zap.String("target", newTarget),
	)

	return fmt.Sprintf("%s now redirects to %s", key.Relative(), newTarget), nil
}

// ChangeOwner transfers the link to another verified identifier.
// Transferring to the current owner is a no-op.
func (d *Directory) ChangeOwner(ctx context.Context, rawLink, newOwner, owner string) (string, error) {
	key := NormalizeKey(rawLink)

	link, err := d.ownedLink(ctx, key, owner)
	if err != nil {
		return "", err
	}

	next := strings.ToLower(newOwner)
	if link.Owner == next {
		return fmt.Sprintf("the owner of %s remains the same", key.Relative()), nil
	}

	if err := d.repo.SetOwner(ctx, key, next, d.now()); err != nil {
		return "", fmt.Errorf("change owner of %s: %w", key.Relative(), err)
	}

	d.logger.Info("link ownership transferred",
		zap.String("link", key.Relative()),
		zap.String("owner", next),
	)

	return fmt.Sprintf("ownership of %s transferred to %s", key.Relative(), next), nil
}

// Delete removes the link.
func (d *Directory) Delete(ctx context.Context, rawLink, owner string) (string, error) {
	key := NormalizeKey(rawLink)

	if _, err := d.ownedLink(ctx, key, owner); err != nil {
		return "", err
	}

	removed, err := d.repo.Delete(ctx, key)
	if err != nil {
		return "", fmt.Errorf("delete %s: %w", key.Relative(), err)
	}

	if !removed {
		return "", opErr(ErrNotFound, "%s does not exist", key.Relative())
	}

	d.logger.Info("link deleted", zap.String("link", key.Relative()))

	return fmt.Sprintf("%s deleted", key.Relative()), nil
}

// ListByOwner returns every link owned by the given identifier.
func (d *Directory) ListByOwner(ctx context.Context, owner string) ([]*Link, error) {
	links, err := d.repo.ListByOwner(ctx, strings.ToLower(owner))
	if err != nil {
		return nil, fmt.Errorf("list links for %s: %w", strings.ToLower(owner), err)
	}

	return links, nil
}

// ownedLink fetches the link and checks that the caller owns it. Existence
// is revealed to non-owners; only the mutation itself is denied.
func (d *Directory) ownedLink(ctx context.Context, key Key, owner string) (*Link, error) {
	link, err := d.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, opErr(ErrNotFound, "%s does not exist", key.Relative())
		}

		return nil, fmt.Errorf("get %s: %w", key.Relative(), err)
	}

	if link.Owner != strings.ToLower(owner) {
		return nil, opErr(ErrForbidden, "%s is owned by %s", key.Relative(), link.Owner)
	}

	return link, nil
}
