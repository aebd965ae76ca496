// Package notesboard 情书展示板：远端有数据时展示实时列表，
// 远端从未返回数据时展示示例情书并只在本地修改。
package notesboard

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/livequery"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/notice"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
)

// State 展示板状态
type State string

const (
	StateLoading  State = "loading"
	StateRemote   State = "remote"
	StateFallback State = "fallback"
)

// NoteStore 展示板依赖的情书存储
type NoteStore interface {
	Subscribe(callback func([]database.LoveNote)) func()
	AddNote(ctx context.Context, req *lovenote.AddNoteRequest) (*database.LoveNote, error)
	UpdateNote(ctx context.Context, note *database.LoveNote) (*database.LoveNote, error)
	TogglePin(ctx context.Context, id string, value bool) error
	DeleteNote(ctx context.Context, id string) error
}

// source 数据来源，remoteSource 与 fallbackSource 二选一
type source interface {
	apply(ctx context.Context, b *Board, m Mutation) notice.Notice
}

type remoteSource struct{ store NoteStore }

type fallbackSource struct{}

// MutationKind 修改类型
type MutationKind string

const (
	MutationAdd       MutationKind = "add"
	MutationEdit      MutationKind = "edit"
	MutationTogglePin MutationKind = "toggle_pin"
	MutationDelete    MutationKind = "delete"
)

// Mutation 一次修改。新增和编辑使用 Note 的全部字段，置顶和删除只用 Note.ID
type Mutation struct {
	Kind MutationKind      `json:"kind"`
	Note database.LoveNote `json:"note"`
}

// View 展示板的当前视图，Pinned 与 Regular 按 IsPinned 划分 Notes
type View struct {
	State   State               `json:"state"`
	Notes   []database.LoveNote `json:"notes"`
	Pinned  []database.LoveNote `json:"pinned"`
	Regular []database.LoveNote `json:"regular"`
}

// Board 一次挂载的展示板
type Board struct {
	store NoteStore
	now   func() time.Time

	mu          sync.Mutex
	state       State
	notes       []database.LoveNote
	src         source
	unsubscribe func()
	closeOnce   sync.Once
	localSeq    int // 本地新增情书的序号，同一毫秒内也不会重复

	views *livequery.Feed[View]
}

// Option 展示板选项
type Option func(*Board)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// Mount 订阅情书并返回处于 loading 状态的展示板
func Mount(store NoteStore, opts ...Option) *Board {
	b := &Board{
		store: store,
		now:   time.Now,
		state: StateLoading,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.views = livequery.New("board", func(context.Context) ([]View, error) {
		return []View{b.View()}, nil
	})
	b.unsubscribe = store.Subscribe(b.onSnapshot)
	return b
}

// onSnapshot 处理订阅回调。
// loading 时按是否有数据进入 remote 或 fallback；fallback 收到非空列表后切到 remote；
// 进入 remote 之后不再回到 fallback
func (b *Board) onSnapshot(records []database.LoveNote) {
	b.mu.Lock()
	switch {
	case len(records) > 0:
		if b.state != StateRemote {
			logger.Infof("展示板切换到远端数据, 共 %d 条", len(records))
		}
		b.state = StateRemote
		b.src = remoteSource{store: b.store}
		b.notes = records
	case b.state == StateLoading:
		b.state = StateFallback
		b.src = fallbackSource{}
		b.notes = SampleNotes()
	case b.state == StateRemote:
		b.notes = records
	}
	b.mu.Unlock()

	b.publish()
}

// View 返回当前视图
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Board) viewLocked() View {
	notes := make([]database.LoveNote, len(b.notes))
	copy(notes, b.notes)
	pinned, regular := database.Partition(notes)
	return View{State: b.state, Notes: notes, Pinned: pinned, Regular: regular}
}

// State 当前状态
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Watch 订阅视图变化，返回取消函数
func (b *Board) Watch(callback func(View)) func() {
	return b.views.Subscribe(func(views []View) {
		if len(views) > 0 {
			callback(views[len(views)-1])
		}
	})
}

// Dispatch 执行一次修改并返回提示。
// fallback 只修改本地副本；remote 交给存储处理，等待订阅回调带回新列表
func (b *Board) Dispatch(ctx context.Context, m Mutation) notice.Notice {
	if m.Kind == MutationAdd && !filled(m.Note) {
		return notice.Fail("note_fields_required")
	}

	b.mu.Lock()
	src := b.src
	b.mu.Unlock()

	if src == nil {
		return notice.Fail("board_loading")
	}
	return src.apply(ctx, b, m)
}

// Close 取消订阅，只执行一次
func (b *Board) Close() {
	b.closeOnce.Do(func() {
		b.unsubscribe()
		b.views.Close()
	})
}

// publish 经由 Refresh 串行发布，loader 读取发布时刻的状态，
// 最后一次发布总是最新视图
func (b *Board) publish() {
	_ = b.views.Refresh(context.Background())
}

func (r remoteSource) apply(ctx context.Context, b *Board, m Mutation) notice.Notice {
	switch m.Kind {
	case MutationAdd:
		_, err := r.store.AddNote(ctx, &lovenote.AddNoteRequest{
			Title:   m.Note.Title,
			Content: m.Note.Content,
			Author:  m.Note.Author,
			Mood:    m.Note.Mood,
		})
		if err != nil {
			logger.Errorf("展示板新增情书失败: %v", err)
			return notice.Fail("note_add_failed")
		}
		return notice.OK("note_added")

	case MutationEdit:
		note := m.Note
		if _, err := r.store.UpdateNote(ctx, &note); err != nil {
			logger.Errorf("展示板更新情书失败: id=%s, 错误=%v", note.ID, err)
			return notice.Fail("note_update_failed")
		}
		return notice.OK("note_updated")

	case MutationTogglePin:
		current, ok := b.find(m.Note.ID)
		if !ok {
			logger.Warnf("展示板置顶失败, 情书不在当前列表: %s", m.Note.ID)
			return notice.Fail("pin_update_failed")
		}
		if err := r.store.TogglePin(ctx, current.ID, !current.IsPinned); err != nil {
			logger.Errorf("展示板更新置顶失败: id=%s, 错误=%v", current.ID, err)
			return notice.Fail("pin_update_failed")
		}
		return notice.OK("pin_updated")

	case MutationDelete:
		err := r.store.DeleteNote(ctx, m.Note.ID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNoteNotFoundError) {
			logger.Errorf("展示板删除情书失败: id=%s, 错误=%v", m.Note.ID, err)
			return notice.Fail("note_delete_failed")
		}
		return notice.OK("note_deleted")
	}
	return notice.Fail("invalid_params")
}

func (fallbackSource) apply(_ context.Context, b *Board, m Mutation) notice.Notice {
	var result notice.Notice

	b.mu.Lock()
	switch m.Kind {
	case MutationAdd:
		now := b.now()
		b.localSeq++
		note := database.LoveNote{
			ID:        strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.Itoa(b.localSeq),
			Title:     m.Note.Title,
			Content:   m.Note.Content,
			Author:    m.Note.Author,
			Mood:      m.Note.Mood,
			CreatedAt: now,
		}.Sanitize(now)
		b.notes = append([]database.LoveNote{note}, b.notes...)
		result = notice.OK("note_added")

	case MutationEdit:
		for i := range b.notes {
			if b.notes[i].ID == m.Note.ID {
				edited := m.Note
				edited.CreatedAt = b.notes[i].CreatedAt
				b.notes[i] = edited.Sanitize(b.now())
			}
		}
		result = notice.OK("note_updated")

	case MutationTogglePin:
		for i := range b.notes {
			if b.notes[i].ID == m.Note.ID {
				b.notes[i].IsPinned = !b.notes[i].IsPinned
			}
		}
		result = notice.OK("pin_updated")

	case MutationDelete:
		kept := b.notes[:0:0]
		for _, n := range b.notes {
			if n.ID != m.Note.ID {
				kept = append(kept, n)
			}
		}
		b.notes = kept
		result = notice.OK("note_deleted")

	default:
		result = notice.Fail("invalid_params")
	}
	b.mu.Unlock()

	if result.Success {
		b.publish()
	}
	return result
}

func (b *Board) find(id string) (database.LoveNote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.notes {
		if n.ID == id {
			return n, true
		}
	}
	return database.LoveNote{}, false
}

func filled(n database.LoveNote) bool {
	return strings.TrimSpace(n.Title) != "" && strings.TrimSpace(n.Content) != "" && strings.TrimSpace(n.Author) != ""
}
