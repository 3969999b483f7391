package denylist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFP = "d41d8cd98f00b204e9800998ecf8427e"

func TestFileStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "denylist.txt")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	// empty store exports zero bytes
	out, err := s.ExportAll(ctx)
	assert.NoError(err)
	assert.Len(out, 0)

	ok, err := s.Contains(ctx, testFP)
	assert.NoError(err)
	assert.False(ok)

	created, err := s.Add(ctx, testFP)
	assert.NoError(err)
	assert.True(created)
	ok, err = s.Contains(ctx, testFP)
	assert.NoError(err)
	assert.True(ok)

	// idempotent add
	created, err = s.Add(ctx, testFP)
	assert.NoError(err)
	assert.False(created)

	out, err = s.ExportAll(ctx)
	assert.NoError(err)
	assert.Equal(testFP+"\n", string(out))

	removed, err := s.Remove(ctx, testFP)
	assert.NoError(err)
	assert.True(removed)
	ok, err = s.Contains(ctx, testFP)
	assert.NoError(err)
	assert.False(ok)

	removed, err = s.Remove(ctx, testFP)
	assert.NoError(err)
	assert.False(removed)
}

func TestFileStoreNormalization(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "denylist.txt")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	created, err := s.Add(ctx, "  D41D8CD98F00B204E9800998ECF8427E\n")
	assert.NoError(err)
	assert.True(created)

	ok, err := s.Contains(ctx, "d41d8cd98f00b204e9800998ecf8427e")
	assert.NoError(err)
	assert.True(ok)

	// same value after normalization is a duplicate
	created, err = s.Add(ctx, testFP)
	assert.NoError(err)
	assert.False(created)
}

func TestFileStoreValidation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "denylist.txt")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", testFP + "00"} {
		_, err := s.Add(ctx, bad)
		assert.ErrorIs(err, ErrInvalidFingerprint)
	}

	// no mutation happened
	out, err := s.ExportAll(ctx)
	assert.NoError(err)
	assert.Len(out, 0)
}

func TestFileStorePersistedForm(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "denylist.txt")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	fps := []string{
		"ffffffffffffffffffffffffffffffff",
		"00000000000000000000000000000000",
		"d41d8cd98f00b204e9800998ecf8427e",
	}
	for _, fp := range fps {
		_, err := s.Add(ctx, fp)
		require.NoError(t, err)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "00000000000000000000000000000000\nd41d8cd98f00b204e9800998ecf8427e\nffffffffffffffffffffffffffffffff\n"
	assert.Equal(want, string(raw))

	// reload from disk round-trips
	s2, err := NewFileStore(path)
	require.NoError(t, err)
	out, err := s2.ExportAll(ctx)
	assert.NoError(err)
	assert.Equal(want, string(out))
}
