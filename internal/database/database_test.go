package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/keepsake/config"
)

func TestInitInMemory(t *testing.T) {
	db, err := Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	for _, table := range []string{"media_entries", "love_notes", "upload_records"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInitUnsupportedDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(""))
	assert.Equal(t, "data/k.db?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", sqliteDSN("data/k.db"))
	assert.Contains(t, sqliteDSN("data/k.db?cache=shared"), "cache=shared&_journal_mode=WAL")
}

func TestSanitize(t *testing.T) {
	now := time.Date(2025, 10, 23, 0, 0, 0, 0, time.UTC)

	note := LoveNote{ID: "n1"}.Sanitize(now)
	assert.Equal(t, DefaultMood, note.Mood)
	assert.Equal(t, now, note.CreatedAt)

	entry := MediaEntry{ID: "e1", MediaType: "hologram"}.Sanitize(now)
	assert.Equal(t, MediaPhoto, entry.MediaType)
	assert.Equal(t, MediaVideo, MediaEntry{MediaType: MediaVideo}.Sanitize(now).MediaType)
}

func TestPartition(t *testing.T) {
	notes := []LoveNote{
		{ID: "a", IsPinned: true},
		{ID: "b"},
		{ID: "c", IsPinned: true},
		{ID: "d"},
	}
	pinned, regular := Partition(notes)

	assert.Len(t, pinned, 2)
	assert.Len(t, regular, 2)
	assert.Equal(t, len(notes), len(pinned)+len(regular))

	seen := map[string]bool{}
	for _, n := range append(pinned, regular...) {
		assert.False(t, seen[n.ID], "重复出现: %s", n.ID)
		seen[n.ID] = true
	}
	assert.Equal(t, "a", pinned[0].ID)
	assert.Equal(t, "c", pinned[1].ID)

	p, r := Partition(nil)
	assert.Empty(t, p)
	assert.Empty(t, r)
}
