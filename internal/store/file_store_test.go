package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials")
	s, err := NewFileStore(path, "test_secret")
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "my-access-token"))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my-access-token", got)
}

func TestFileStoreTokenIsSealedAtRest(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "my-access-token"))

	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "my-access-token")
}

func TestFileStoreGetAbsentReturnsNotFound(t *testing.T) {
	s := newFileStore(t)

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSetReplacesPreviousToken(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "first"))
	require.NoError(t, s.Set(ctx, "second"))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestFileStoreRemoveIsIdempotent(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tok"))
	require.NoError(t, s.Remove(ctx))
	require.NoError(t, s.Remove(ctx))

	_, err := s.Get(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreWrongSecretFailsToUnseal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	s1, err := NewFileStore(path, "one_secret")
	require.NoError(t, err)
	require.NoError(t, s1.Set(context.Background(), "tok"))

	s2, err := NewFileStore(path, "another_secret")
	require.NoError(t, err)
	_, err = s2.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
