package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".carelink"), dir)
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("api.base_url", "https://care.example"))
	require.NoError(t, store.Set("api.timeout_seconds", 20))
	require.NoError(t, store.Set("api.rate_limit", 2.5))
	require.NoError(t, store.Set("cache.enabled", true))

	assert.Equal(t, "https://care.example", store.GetString("api.base_url"))
	assert.Equal(t, 20, store.GetInt("api.timeout_seconds"))
	assert.InDelta(t, 2.5, store.GetFloat("api.rate_limit"), 1e-9)
	assert.InDelta(t, 20.0, store.GetFloat("api.timeout_seconds"), 1e-9)
	assert.True(t, store.GetBool("cache.enabled"))

	// Wrong type or missing key returns the zero value.
	assert.Empty(t, store.GetString("api.timeout_seconds"))
	assert.Zero(t, store.GetInt("api.base_url"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("api.base_url"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("api.base_url", "https://care.example"))
	require.NoError(t, store.Set("api.timeout_seconds", 20))
	require.NoError(t, store.Set("family.default", "fam-1"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[api]")
	assert.Contains(t, string(raw), "base_url")
	assert.NotContains(t, string(raw), "api.base_url")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "https://care.example", reloaded.GetString("api.base_url"))
	assert.Equal(t, 20, reloaded.GetInt("api.timeout_seconds"))
	assert.Equal(t, "fam-1", reloaded.GetString("family.default"))
	assert.Equal(t, []string{"api.base_url", "api.timeout_seconds", "family.default"}, reloaded.Keys())
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[api]
base_url = "https://care.example"
rate_limit = 3

[dedup]
size = 100
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "https://care.example", store.GetString("api.base_url"))
	assert.InDelta(t, 3.0, store.GetFloat("api.rate_limit"), 1e-9)
	assert.Equal(t, 100, store.GetInt("dedup.size"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("api.token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_SetConflictingKeyRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("api.token", "secret"))

	err = store.Set("api", "flat")
	assert.Error(t, err)

	_, ok := store.Get("api")
	assert.False(t, ok)
	assert.Equal(t, "secret", store.GetString("api.token"))
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err = store.Set("another", "value")
	assert.Error(t, err)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("valid", "data"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("upload.clear_delay_seconds", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("upload.clear_delay_seconds")
		}()
	}
	wg.Wait()

	_, ok := store.Get("upload.clear_delay_seconds")
	assert.True(t, ok)
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{
		"api.base_url": "u",
		"api.token":    "t",
		"top":          1,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"api": map[string]any{"base_url": "u", "token": "t"},
		"top": 1,
	}, nested)
	assert.Equal(t, map[string]any{"api.base_url": "u", "api.token": "t", "top": 1}, flattenMap(nested, ""))
}
