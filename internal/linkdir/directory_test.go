package linkdir_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/serroba/golinks/internal/linkdir"
	"github.com/serroba/golinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDirectory() (*linkdir.Directory, *store.MemoryStore) {
	memStore := store.NewMemoryStore()

	return linkdir.NewDirectory(memStore, zap.NewNop()), memStore
}

func TestDirectoryCreate(t *testing.T) {
	t.Run("creates a link with zero clicks", func(t *testing.T) {
		directory, _ := newTestDirectory()

		msg, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")

		require.NoError(t, err)
		assert.Equal(t, "/foo now redirects to https://example.com", msg)

		link, err := directory.Info(context.Background(), "/foo")
		require.NoError(t, err)
		assert.Equal(t, linkdir.Key("/foo"), link.Key)
		assert.Equal(t, "https://example.com", link.Target)
		assert.Equal(t, "mbland@acm.org", link.Owner)
		assert.Zero(t, link.Clicks)
	})

	t.Run("lowercases the owner identifier", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "MBland@ACM.org")
		require.NoError(t, err)

		link, err := directory.Info(context.Background(), "/foo")
		require.NoError(t, err)
		assert.Equal(t, "mbland@acm.org", link.Owner)
	})

	t.Run("rejects a duplicate key and keeps the original record", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		_, err = directory.Create(context.Background(), "/foo", "https://other.example.com", "other@acm.org")
		require.ErrorIs(t, err, linkdir.ErrExists)
		assert.EqualError(t, err, "/foo already exists")

		link, err := directory.Info(context.Background(), "foo")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.Target)
		assert.Equal(t, "mbland@acm.org", link.Owner)
	})

	t.Run("rejects an empty target", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "   ", "mbland@acm.org")

		require.ErrorIs(t, err, linkdir.ErrTargetEmpty)
		assert.True(t, linkdir.IsInvalidTarget(err))
	})

	t.Run("rejects a non-http target scheme", func(t *testing.T) {
		directory, _ := newTestDirectory()

		for _, target := range []string{"gopher://example.com", "ftp://example.com", "example.com", "/relative"} {
			_, err := directory.Create(context.Background(), "foo", target, "mbland@acm.org")
			require.ErrorIs(t, err, linkdir.ErrTargetScheme, "target %q", target)
		}
	})

	t.Run("concurrent creates of the same key have one winner", func(t *testing.T) {
		directory, _ := newTestDirectory()

		const workers = 16

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			errs   []error
			winner int
		)

		for i := 0; i < workers; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := directory.Create(context.Background(), "race", "https://example.com", "mbland@acm.org")

				mu.Lock()
				defer mu.Unlock()

				if err == nil {
					winner++
				} else {
					errs = append(errs, err)
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, winner)
		assert.Len(t, errs, workers-1)

		for _, err := range errs {
			assert.ErrorIs(t, err, linkdir.ErrExists)
		}
	})
}

func TestDirectoryInfo(t *testing.T) {
	t.Run("does not count a lookup as a click", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			link, err := directory.Info(context.Background(), "foo")
			require.NoError(t, err)
			assert.Zero(t, link.Clicks)
		}
	})

	t.Run("reports a missing link", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Info(context.Background(), "nope")

		require.ErrorIs(t, err, linkdir.ErrNotFound)
		assert.EqualError(t, err, "/nope does not exist")
	})
}

func TestDirectoryResolveAndCount(t *testing.T) {
	t.Run("returns the target and counts the click", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		link, err := directory.ResolveAndCount(context.Background(), "foo")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.Target)
		assert.Equal(t, int64(1), link.Clicks)

		link, err = directory.ResolveAndCount(context.Background(), "/foo")
		require.NoError(t, err)
		assert.Equal(t, int64(2), link.Clicks)
	})

	t.Run("does not create a record for a missing key", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.ResolveAndCount(context.Background(), "nope")
		require.ErrorIs(t, err, linkdir.ErrNotFound)

		_, err = directory.Info(context.Background(), "nope")
		require.ErrorIs(t, err, linkdir.ErrNotFound)
	})

	t.Run("concurrent clicks net to the exact total", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		const clicks = 50

		var wg sync.WaitGroup

		for i := 0; i < clicks; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := directory.ResolveAndCount(context.Background(), "foo")
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		link, err := directory.Info(context.Background(), "foo")
		require.NoError(t, err)
		assert.Equal(t, int64(clicks), link.Clicks)
	})
}

func TestDirectoryUpdateTarget(t *testing.T) {
	t.Run("replaces the target for the owner", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.UpdateTarget(context.Background(), "foo", "https://other.example.com", "mbland@acm.org")
		require.NoError(t, err)
		assert.Equal(t, "/foo now redirects to https://other.example.com", msg)

		link, err := directory.Info(context.Background(), "foo")
		require.NoError(t, err)
		assert.Equal(t, "https://other.example.com", link.Target)
	})

	t.Run("setting the same target is a no-op", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.UpdateTarget(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)
		assert.Equal(t, "the target of /foo remains the same", msg)
	})

	t.Run("validates the new target before touching the record", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		_, err = directory.UpdateTarget(context.Background(), "foo", "gopher://example.com", "mbland@acm.org")
		require.ErrorIs(t, err, linkdir.ErrTargetScheme)

		link, err := directory.Info(context.Background(), "foo")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", link.Target)
	})

	t.Run("denies a non-owner and names the owner", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		_, err = directory.UpdateTarget(context.Background(), "foo", "https://other.example.com", "other@acm.org")
		require.ErrorIs(t, err, linkdir.ErrForbidden)
		assert.EqualError(t, err, "/foo is owned by mbland@acm.org")
	})

	t.Run("missing link reports not found", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.UpdateTarget(context.Background(), "nope", "https://example.com", "mbland@acm.org")
		require.ErrorIs(t, err, linkdir.ErrNotFound)
	})
}

func TestDirectoryChangeOwner(t *testing.T) {
	t.Run("transfers ownership", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.ChangeOwner(context.Background(), "foo", "Other@ACM.org", "mbland@acm.org")
		require.NoError(t, err)
		assert.Equal(t, "ownership of /foo transferred to other@acm.org", msg)

		// The previous owner may no longer mutate the link.
		_, err = directory.Delete(context.Background(), "foo", "mbland@acm.org")
		require.ErrorIs(t, err, linkdir.ErrForbidden)

		_, err = directory.Delete(context.Background(), "foo", "other@acm.org")
		require.NoError(t, err)
	})

	t.Run("transferring to the current owner is a no-op", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.ChangeOwner(context.Background(), "foo", "MBland@acm.org", "mbland@acm.org")
		require.NoError(t, err)
		assert.Equal(t, "the owner of /foo remains the same", msg)
	})

	t.Run("owner comparison ignores case", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.ChangeOwner(context.Background(), "foo", "other@acm.org", "MBLAND@ACM.ORG")
		require.NoError(t, err)
		assert.Equal(t, "ownership of /foo transferred to other@acm.org", msg)
	})
}

func TestDirectoryDelete(t *testing.T) {
	t.Run("removes the link and frees the key", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		msg, err := directory.Delete(context.Background(), "foo", "mbland@acm.org")
		require.NoError(t, err)
		assert.Equal(t, "/foo deleted", msg)

		_, err = directory.Info(context.Background(), "foo")
		require.ErrorIs(t, err, linkdir.ErrNotFound)

		// Deleted keys can be reclaimed, with a fresh click count.
		_, err = directory.Create(context.Background(), "foo", "https://other.example.com", "other@acm.org")
		require.NoError(t, err)

		link, err := directory.Info(context.Background(), "foo")
		require.NoError(t, err)
		assert.Zero(t, link.Clicks)
	})

	t.Run("denies a non-owner", func(t *testing.T) {
		directory, _ := newTestDirectory()

		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.NoError(t, err)

		_, err = directory.Delete(context.Background(), "foo", "other@acm.org")
		require.ErrorIs(t, err, linkdir.ErrForbidden)

		_, err = directory.Info(context.Background(), "foo")
		require.NoError(t, err)
	})
}

func TestDirectoryListByOwner(t *testing.T) {
	directory, _ := newTestDirectory()

	_, err := directory.Create(context.Background(), "foo", "https://example.com/1", "mbland@acm.org")
	require.NoError(t, err)
	_, err = directory.Create(context.Background(), "bar", "https://example.com/2", "mbland@acm.org")
	require.NoError(t, err)
	_, err = directory.Create(context.Background(), "baz", "https://example.com/3", "other@acm.org")
	require.NoError(t, err)

	t.Run("returns only the owner's links", func(t *testing.T) {
		links, err := directory.ListByOwner(context.Background(), "mbland@acm.org")
		require.NoError(t, err)
		require.Len(t, links, 2)

		keys := []linkdir.Key{links[0].Key, links[1].Key}
		assert.ElementsMatch(t, []linkdir.Key{"/foo", "/bar"}, keys)
	})

	t.Run("lookup ignores owner case", func(t *testing.T) {
		links, err := directory.ListByOwner(context.Background(), "MBland@ACM.org")
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("unknown owner yields an empty list", func(t *testing.T) {
		links, err := directory.ListByOwner(context.Background(), "nobody@acm.org")
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

// failingRepo returns a fixed error from every operation.
type failingRepo struct {
	err error
}

func (r *failingRepo) Get(context.Context, linkdir.Key) (*linkdir.Link, error) {
	return nil, r.err
}

func (r *failingRepo) Create(context.Context, *linkdir.Link) error { return r.err }

func (r *failingRepo) SetTarget(context.Context, linkdir.Key, string, time.Time) error {
	return r.err
}

func (r *failingRepo) SetOwner(context.Context, linkdir.Key, string, time.Time) error {
	return r.err
}

func (r *failingRepo) Delete(context.Context, linkdir.Key) (bool, error) { return false, r.err }

func (r *failingRepo) Increment(context.Context, linkdir.Key) (*linkdir.Link, error) {
	return nil, r.err
}

func (r *failingRepo) ListByOwner(context.Context, string) ([]*linkdir.Link, error) {
	return nil, r.err
}

func TestDirectoryStorageErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	directory := linkdir.NewDirectory(&failingRepo{err: storeErr}, zap.NewNop())

	t.Run("storage failures are not reported as user errors", func(t *testing.T) {
		_, err := directory.Create(context.Background(), "foo", "https://example.com", "mbland@acm.org")
		require.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, linkdir.ErrExists)

		_, err = directory.Info(context.Background(), "foo")
		require.ErrorIs(t, err, storeErr)
		assert.NotErrorIs(t, err, linkdir.ErrNotFound)

		_, err = directory.ResolveAndCount(context.Background(), "foo")
		require.ErrorIs(t, err, storeErr)

		_, err = directory.ListByOwner(context.Background(), "mbland@acm.org")
		require.ErrorIs(t, err, storeErr)
	})
}
