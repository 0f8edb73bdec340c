package sessions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestFileStore(t *testing.T) *FileTokenStore {
	t.Helper()
	return NewFileTokenStore(filepath.Join(t.TempDir(), "miportal"), "http://localhost:8000/api/v1", "localhost:8000")
}

func TestFileTokenStore_Path(t *testing.T) {
	store := NewFileTokenStore("/tmp/miportal", "http://localhost:8000/api/v1", "localhost:8000")
	assert.Equal(t, filepath.Join("/tmp/miportal", "localhost_8000.yaml"), store.Path())

	store = NewFileTokenStore("/tmp/miportal", "", "")
	assert.Equal(t, filepath.Join("/tmp/miportal", "default.yaml"), store.Path())
}

func TestFileTokenStore_LoadMissing(t *testing.T) {
	store := newTestFileStore(t)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenStore_SaveLoadDelete(t *testing.T) {
	store := newTestFileStore(t)

	require.NoError(t, store.Save("abc123"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	// A shorter token must not leave trailing bytes from the previous write
	require.NoError(t, store.Save("x"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", token)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	// Deleting an empty slot is not an error
	assert.NoError(t, store.Delete())
}

func TestFileTokenStore_FileContents(t *testing.T) {
	store := newTestFileStore(t)
	require.NoError(t, store.Save("abc123"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var stored tokenFile
	require.NoError(t, yaml.Unmarshal(data, &stored))
	assert.Equal(t, tokenFileVersion, stored.Version)
	assert.Equal(t, "http://localhost:8000/api/v1", stored.Endpoint)
	assert.Equal(t, "abc123", stored.Token)
	assert.False(t, stored.Timestamp.IsZero())
}

func TestFileTokenStore_CorruptFileReadsAsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{name: "empty file", contents: ""},
		{name: "invalid yaml", contents: "token: [unterminated"},
		{name: "blank token", contents: "version: \"1.0\"\ntoken: \"  \"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestFileStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o700))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.contents), 0o600))

			_, err := store.Load()
			assert.ErrorIs(t, err, ErrNoToken)
		})
	}
}

func TestTokenStores_RejectEmptyToken(t *testing.T) {
	stores := map[string]TokenStore{
		"file":   newTestFileStore(t),
		"memory": NewMemoryTokenStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, store.Save(" "))
			_, err := store.Load()
			assert.ErrorIs(t, err, ErrNoToken)
		})
	}
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, store.Save("abc123"))
	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	require.NoError(t, store.Delete())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoToken)
}
