package lovenote

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
)

// stepClock 每次调用前进一秒，保证创建时间严格递增
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func setupService(t *testing.T) LoveNoteService {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewLoveNoteService(db, nil, WithClock(clock.Now))
	t.Cleanup(svc.Close)
	return svc
}

// latest 记录订阅回调收到的最后一份列表
type latest struct {
	mu    sync.Mutex
	notes []database.LoveNote
	calls int
}

func (l *latest) set(notes []database.LoveNote) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = notes
	l.calls++
}

func (l *latest) get() ([]database.LoveNote, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notes, l.calls
}

func addNote(t *testing.T, svc LoveNoteService, title string) *database.LoveNote {
	t.Helper()
	note, err := svc.AddNote(context.Background(), &AddNoteRequest{
		Title: title, Content: "content of " + title, Author: "Alex",
	})
	require.NoError(t, err)
	return note
}

func TestAddNote(t *testing.T) {
	svc := setupService(t)

	t.Run("默认心情", func(t *testing.T) {
		note := addNote(t, svc, "Just Because")
		assert.NotEmpty(t, note.ID)
		assert.Equal(t, database.DefaultMood, note.Mood)
		assert.False(t, note.IsPinned)
		assert.False(t, note.CreatedAt.IsZero())
	})

	t.Run("缺少字段", func(t *testing.T) {
		_, err := svc.AddNote(context.Background(), &AddNoteRequest{Title: "x", Author: "Sam"})
		assert.True(t, apperrors.Is(err, apperrors.ErrNoteFieldsRequiredError))
	})
}

func TestOrderSurvivesOffsetChange(t *testing.T) {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	// 夏令时结束前后：第二条的本地时间更早，实际时刻更晚
	edt := time.FixedZone("EDT", -4*3600)
	est := time.FixedZone("EST", -5*3600)
	times := []time.Time{
		time.Date(2025, 11, 2, 1, 30, 0, 0, edt),
		time.Date(2025, 11, 2, 1, 10, 0, 0, est),
	}
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		next := times[0]
		if len(times) > 1 {
			times = times[1:]
		}
		return next
	}
	svc := NewLoveNoteService(db, nil, WithClock(clock))
	t.Cleanup(svc.Close)

	before := addNote(t, svc, "before")
	after := addNote(t, svc, "after")
	assert.Equal(t, time.UTC, after.CreatedAt.Location())

	notes, err := svc.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, after.ID, notes[0].ID)
	assert.Equal(t, before.ID, notes[1].ID)
}

func TestSubscribeReceivesNewNoteFirst(t *testing.T) {
	svc := setupService(t)
	addNote(t, svc, "first")
	addNote(t, svc, "second")

	l := &latest{}
	unsubscribe := svc.Subscribe(l.set)
	defer unsubscribe()

	require.Eventually(t, func() bool { n, _ := l.get(); return len(n) == 2 }, time.Second, 5*time.Millisecond)

	added := addNote(t, svc, "third")
	require.Eventually(t, func() bool { n, _ := l.get(); return len(n) == 3 }, time.Second, 5*time.Millisecond)

	notes, _ := l.get()
	assert.Equal(t, added.ID, notes[0].ID)
	assert.Equal(t, "second", notes[1].Title)
	assert.Equal(t, "first", notes[2].Title)
}

func TestTogglePinRoundTrip(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	original := addNote(t, svc, "After Our Hike")

	require.NoError(t, svc.TogglePin(ctx, original.ID, true))
	pinned, err := svc.GetNote(ctx, original.ID)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)

	require.NoError(t, svc.TogglePin(ctx, original.ID, false))
	restored, err := svc.GetNote(ctx, original.ID)
	require.NoError(t, err)

	assert.False(t, restored.IsPinned)
	assert.Equal(t, original.Title, restored.Title)
	assert.Equal(t, original.Content, restored.Content)
	assert.Equal(t, original.Author, restored.Author)
	assert.Equal(t, original.Mood, restored.Mood)
	assert.True(t, original.CreatedAt.Equal(restored.CreatedAt))

	err = svc.TogglePin(ctx, "missing", true)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoteNotFoundError))
}

func TestUpdateNoteOverwritesRecord(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	note := addNote(t, svc, "Morning Coffee")

	updated, err := svc.UpdateNote(ctx, &database.LoveNote{
		ID: note.ID, Title: "Morning Coffee Thoughts", Content: "new", Author: "Sam", IsPinned: true, Mood: "☕",
	})
	require.NoError(t, err)
	assert.Equal(t, "Morning Coffee Thoughts", updated.Title)
	assert.Equal(t, "Sam", updated.Author)
	assert.True(t, updated.IsPinned)
	assert.Equal(t, "☕", updated.Mood)

	_, err = svc.UpdateNote(ctx, &database.LoveNote{ID: "gone", Title: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNoteNotFoundError))
}

func TestDeleteNoteRemovesExactlyOne(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	keep := addNote(t, svc, "keep")
	victim := addNote(t, svc, "victim")

	l := &latest{}
	defer svc.Subscribe(l.set)()
	require.Eventually(t, func() bool { n, _ := l.get(); return len(n) == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, svc.DeleteNote(ctx, victim.ID))
	require.Eventually(t, func() bool { n, _ := l.get(); return len(n) == 1 }, time.Second, 5*time.Millisecond)

	notes, _ := l.get()
	assert.Equal(t, keep.ID, notes[0].ID)

	err := svc.DeleteNote(ctx, victim.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoteNotFoundError))
}

func TestWritesEventuallyConsistentWithSubscription(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	l := &latest{}
	defer svc.Subscribe(l.set)()

	a := addNote(t, svc, "a")
	b := addNote(t, svc, "b")
	c := addNote(t, svc, "c")
	require.NoError(t, svc.TogglePin(ctx, b.ID, true))
	require.NoError(t, svc.DeleteNote(ctx, a.ID))
	_, err := svc.UpdateNote(ctx, &database.LoveNote{ID: c.ID, Title: "c2", Content: "c", Author: "Alex"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		notes, _ := l.get()
		return len(notes) == 2 && notes[0].Title == "c2" && notes[1].IsPinned
	}, time.Second, 5*time.Millisecond)

	notes, _ := l.get()
	assert.Equal(t, []string{c.ID, b.ID}, []string{notes[0].ID, notes[1].ID})
}

func TestUnsubscribeReleasesListener(t *testing.T) {
	svc := setupService(t)

	unsubscribe := svc.Subscribe(func([]database.LoveNote) {})
	assert.Equal(t, 1, svc.Listeners())
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, svc.Listeners())
}

func TestListNotesSanitizesRecords(t *testing.T) {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		"INSERT INTO love_notes (id, title, content, author, is_pinned, mood, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"raw", "imported", "body", "Sam", false, "", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	).Error)

	svc := NewLoveNoteService(db, nil)
	defer svc.Close()

	notes, err := svc.ListNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, database.DefaultMood, notes[0].Mood)
}
