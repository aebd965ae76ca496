package notesboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	store := newFakeStore()
	r := NewRegistry(store, time.Minute)

	id, board := r.Mount()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, board, got)

	assert.True(t, r.Unmount(id))
	assert.False(t, r.Unmount(id))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, store.unsubscribed)
}

func TestRegistryReapsIdleSessions(t *testing.T) {
	store := newFakeStore()
	r := NewRegistry(store, time.Minute)
	clock := time.Date(2025, 10, 23, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	idle, _ := r.Mount()
	active, _ := r.Mount()

	clock = clock.Add(45 * time.Second)
	assert.True(t, r.Touch(active))

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, r.Reap())

	_, ok := r.Get(idle)
	assert.False(t, ok)
	_, ok = r.Get(active)
	assert.True(t, ok)

	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 2, store.unsubscribed)
}
