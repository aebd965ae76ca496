package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	require.NoError(t, Save(path, Settings{DarkMode: true, View: ViewStory}))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.DarkMode)
	assert.Equal(t, ViewStory, s.View)
}

func TestInvalidViewFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("dark_mode = true\nview = \"gallery\"\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ViewBirthday, s.View)
	assert.True(t, s.DarkMode)
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := NewStore(path)
	require.NoError(t, err)

	var got Settings
	store.OnChange(func(s Settings) { got = s })

	updated, err := store.Update(func(s *Settings) {
		s.DarkMode = true
		s.View = "admin"
	})
	require.NoError(t, err)
	assert.Equal(t, ViewAdmin, updated.View)
	assert.Equal(t, updated, got)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)
}

func TestStoreWatchPicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Watch())

	var mu sync.Mutex
	var seen []Settings
	store.OnChange(func(s Settings) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, os.WriteFile(path, []byte("dark_mode = true\nview = \"story\"\n"), 0o644))

	require.Eventually(t, func() bool {
		return store.Get() == Settings{DarkMode: true, View: ViewStory}
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
}
