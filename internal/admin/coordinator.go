// Package admin 管理面板的协调器：同时订阅条目与情书，并处理面板上的各项操作
package admin

import (
	"context"
	"io"
	"sync"

	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/livequery"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/notice"
	"github.com/weiwangfds/keepsake/internal/service/lovenote"
	"github.com/weiwangfds/keepsake/internal/service/media"
)

// MediaStore 协调器使用的条目操作
type MediaStore interface {
	Subscribe(callback func([]database.MediaEntry)) func()
	CreateEntry(ctx context.Context, req *media.CreateEntryRequest) (*database.MediaEntry, error)
	UploadFile(ctx context.Context, fileName string, r io.Reader, size int64, contentType string) (string, error)
	DiscardUpload(ctx context.Context, url string) error
	DeleteEntry(ctx context.Context, id string) error
}

// NoteStore 协调器使用的情书操作
type NoteStore interface {
	Subscribe(callback func([]database.LoveNote)) func()
	AddNote(ctx context.Context, req *lovenote.AddNoteRequest) (*database.LoveNote, error)
	GetNote(ctx context.Context, id string) (*database.LoveNote, error)
	TogglePin(ctx context.Context, id string, value bool) error
	DeleteNote(ctx context.Context, id string) error
}

// Snapshot 两个集合的最新列表
type Snapshot struct {
	Entries       []database.MediaEntry `json:"entries"`
	Notes         []database.LoveNote   `json:"notes"`
	EntriesLoaded bool                  `json:"entriesLoaded"`
	NotesLoaded   bool                  `json:"notesLoaded"`
}

// Upload 随条目一起提交的文件
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Coordinator 管理面板协调器
type Coordinator struct {
	media MediaStore
	notes NoteStore

	mu        sync.Mutex
	snap      Snapshot
	opened    bool
	unsubs    []func()
	closeOnce sync.Once

	watchers *livequery.Feed[Snapshot]
}

// NewCoordinator 创建协调器，需要调用 Open 才开始订阅
func NewCoordinator(mediaStore MediaStore, noteStore NoteStore) *Coordinator {
	c := &Coordinator{media: mediaStore, notes: noteStore}
	c.watchers = livequery.New("admin", func(context.Context) ([]Snapshot, error) {
		return []Snapshot{c.Snapshot()}, nil
	})
	return c
}

// Open 分别订阅两个集合，两个回调之间没有顺序保证。重复调用无效果
func (c *Coordinator) Open() {
	c.mu.Lock()
	if c.opened {
		c.mu.Unlock()
		return
	}
	c.opened = true
	c.mu.Unlock()

	unsubEntries := c.media.Subscribe(func(entries []database.MediaEntry) {
		c.mu.Lock()
		c.snap.Entries = entries
		c.snap.EntriesLoaded = true
		c.mu.Unlock()
		c.publish()
	})
	unsubNotes := c.notes.Subscribe(func(notes []database.LoveNote) {
		c.mu.Lock()
		c.snap.Notes = notes
		c.snap.NotesLoaded = true
		c.mu.Unlock()
		c.publish()
	})

	c.mu.Lock()
	c.unsubs = append(c.unsubs, unsubEntries, unsubNotes)
	c.mu.Unlock()
}

// Close 释放两个订阅，只执行一次
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		unsubs := c.unsubs
		c.unsubs = nil
		c.mu.Unlock()

		for _, unsub := range unsubs {
			unsub()
		}
		c.watchers.Close()
	})
}

// Snapshot 返回当前列表的副本
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.snap
	out.Entries = append([]database.MediaEntry(nil), c.snap.Entries...)
	out.Notes = append([]database.LoveNote(nil), c.snap.Notes...)
	return out
}

// Watch 任一集合变化时收到最新快照
func (c *Coordinator) Watch(callback func(Snapshot)) func() {
	return c.watchers.Subscribe(func(snaps []Snapshot) {
		if len(snaps) > 0 {
			callback(snaps[len(snaps)-1])
		}
	})
}

// Watchers 当前观察者数量
func (c *Coordinator) Watchers() int {
	return c.watchers.Len()
}

// publish 两个订阅回调可能同时发布，经由 Refresh 串行后最后一次总是完整快照
func (c *Coordinator) publish() {
	_ = c.watchers.Refresh(context.Background())
}

// SubmitEntry 有文件时先上传，再用返回的地址创建条目
func (c *Coordinator) SubmitEntry(ctx context.Context, form media.CreateEntryRequest, upload *Upload) notice.Notice {
	uploaded := ""
	if upload != nil && upload.Body != nil {
		url, err := c.media.UploadFile(ctx, upload.FileName, upload.Body, upload.Size, upload.ContentType)
		if err != nil {
			logger.WithField("file_name", upload.FileName).Errorf("上传文件失败: %v", err)
			return notice.Fail("entry_save_failed")
		}
		form.URL = url
		uploaded = url
	}

	if _, err := c.media.CreateEntry(ctx, &form); err != nil {
		logger.WithField("title", form.Title).Errorf("保存条目失败: %v", err)
		// 条目没有保存，刚上传的文件不再有引用
		if uploaded != "" {
			if err := c.media.DiscardUpload(context.WithoutCancel(ctx), uploaded); err != nil {
				logger.WithField("url", uploaded).Warnf("回滚上传失败: %v", err)
			}
		}
		return notice.Fail("entry_save_failed")
	}
	return notice.OK("entry_saved")
}

// UploadFile 单独上传文件，返回地址
func (c *Coordinator) UploadFile(ctx context.Context, upload Upload) (string, notice.Notice) {
	url, err := c.media.UploadFile(ctx, upload.FileName, upload.Body, upload.Size, upload.ContentType)
	if err != nil {
		logger.WithField("file_name", upload.FileName).Errorf("上传文件失败: %v", err)
		if apperrors.Is(err, apperrors.ErrUploadTooLargeError) {
			return "", notice.Fail("upload_too_large")
		}
		return "", notice.Fail("upload_failed")
	}
	return url, notice.OK("success")
}

// DeleteEntry 删除条目，条目已不存在时视为成功
func (c *Coordinator) DeleteEntry(ctx context.Context, id string) notice.Notice {
	err := c.media.DeleteEntry(ctx, id)
	if err != nil && !apperrors.Is(err, apperrors.ErrEntryNotFoundError) {
		logger.WithField("entry_id", id).Errorf("删除条目失败: %v", err)
		return notice.Fail("entry_delete_fail")
	}
	return notice.OK("entry_deleted")
}

// SubmitNote 校验标题、内容、作者后新增情书
func (c *Coordinator) SubmitNote(ctx context.Context, form lovenote.AddNoteRequest) notice.Notice {
	if err := form.Validate(); err != nil {
		return notice.Fail("note_fields_required")
	}
	if _, err := c.notes.AddNote(ctx, &form); err != nil {
		logger.WithField("title", form.Title).Errorf("保存情书失败: %v", err)
		return notice.Fail("note_save_failed")
	}
	return notice.OK("note_saved")
}

// TogglePinned 翻转置顶状态，当前状态优先取订阅到的列表
func (c *Coordinator) TogglePinned(ctx context.Context, id string) notice.Notice {
	current, ok := c.findNote(id)
	if !ok {
		note, err := c.notes.GetNote(ctx, id)
		if err != nil {
			logger.WithField("note_id", id).Errorf("读取情书失败: %v", err)
			return notice.Fail("pin_update_failed")
		}
		current = *note
	}

	if err := c.notes.TogglePin(ctx, id, !current.IsPinned); err != nil {
		logger.WithField("note_id", id).Errorf("更新置顶失败: %v", err)
		return notice.Fail("pin_update_failed")
	}
	return notice.OK("pin_updated")
}

// DeleteNote 删除情书，已被删除时视为成功
func (c *Coordinator) DeleteNote(ctx context.Context, id string) notice.Notice {
	err := c.notes.DeleteNote(ctx, id)
	if err != nil && !apperrors.Is(err, apperrors.ErrNoteNotFoundError) {
		logger.WithField("note_id", id).Errorf("删除情书失败: %v", err)
		return notice.Fail("note_delete_failed")
	}
	return notice.OK("note_deleted")
}

func (c *Coordinator) findNote(id string) (database.LoveNote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.snap.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return database.LoveNote{}, false
}
