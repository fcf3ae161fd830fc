package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), ".chimera"))
	require.NoError(t, err)
	require.NoError(t, c.Migrate())
	t.Cleanup(func() { c.Close() })

	return c
}

func TestLookupMissesEmptyCache(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	_, ok, err := c.LookupArtifact(1, map[string]string{"main.chim": "aa"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreAndLookupArtifact(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	hashes := map[string]string{"main.chim": "aa", "util.chim": "bb"}
	require.NoError(t, c.StoreArtifact(1, hashes, "define i32 @main()"))

	artifact, ok, err := c.LookupArtifact(1, hashes)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "define i32 @main()", artifact)
}

func TestLookupMissesOnChangedHash(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	require.NoError(t, c.StoreArtifact(1, map[string]string{"main.chim": "aa"}, "old"))

	_, ok, err := c.LookupArtifact(1, map[string]string{"main.chim": "cc"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupMissesOnChangedFileSet(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	require.NoError(t, c.StoreArtifact(1, map[string]string{"main.chim": "aa"}, "old"))

	_, ok, err := c.LookupArtifact(1, map[string]string{"main.chim": "aa", "new.chim": "bb"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreReplacesArtifact(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	require.NoError(t, c.StoreArtifact(1, map[string]string{"main.chim": "aa"}, "old"))
	require.NoError(t, c.StoreArtifact(1, map[string]string{"main.chim": "ab"}, "new"))

	// The old hash set is gone with the old artifact.
	_, ok, err := c.LookupArtifact(1, map[string]string{"main.chim": "aa"})
	require.NoError(t, err)
	assert.False(t, ok)

	artifact, ok, err := c.LookupArtifact(1, map[string]string{"main.chim": "ab"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", artifact)
}

func TestArtifactsKeyedByModule(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	require.NoError(t, c.StoreArtifact(1, map[string]string{"a.chim": "aa"}, "first"))
	require.NoError(t, c.StoreArtifact(2, map[string]string{"b.chim": "bb"}, "second"))

	artifact, ok, err := c.LookupArtifact(2, map[string]string{"b.chim": "bb"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", artifact)
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.chim")
	require.NoError(t, os.WriteFile(path, []byte("let x = 5\n"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	again, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	other := filepath.Join(dir, "other.chim")
	require.NoError(t, os.WriteFile(other, []byte("let x = 6\n"), 0o644))

	otherHash, err := HashFile(other)
	require.NoError(t, err)
	assert.NotEqual(t, hash, otherHash)
}
