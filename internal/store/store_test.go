package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStoreRoundTrip(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("totalStakingPoints", "2680000000"))
	require.NoError(t, s.Set("totalStakingPoints", "3100000000"))

	v, ok, err := s.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3100000000", v)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	testStoreRoundTrip(t, NewMemoryStore())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "state.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	testStoreRoundTrip(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3100000000", v)
}

func TestFileStoreRecoversFromCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok, err := s.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("totalStakingPoints", "3300000000"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3300000000", v)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stakescope.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	testStoreRoundTrip(t, s)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("totalStakingPoints")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3100000000", v)
}
