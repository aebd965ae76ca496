// Package lovenote 提供情书的实时订阅与增删改操作
// 所有读取都按创建时间倒序，写入确认后立即刷新订阅者看到的列表
package lovenote

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weiwangfds/keepsake/internal/changefeed"
	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/livequery"
	"github.com/weiwangfds/keepsake/internal/logger"
	"gorm.io/gorm"
)

// Collection 集合名，用于跨实例变更通知
const Collection = "loveNotes"

// LoveNoteService 情书服务接口
type LoveNoteService interface {
	// Subscribe 订阅情书列表
	// 参数:
	//   callback - 每次变更时收到完整的有序列表
	// 返回:
	//   func() - 取消订阅，可重复调用
	Subscribe(callback func([]database.LoveNote)) func()

	// AddNote 新增情书，创建时间由服务端决定
	// 参数:
	//   ctx - 请求上下文
	//   req - 新增请求
	// 返回:
	//   *database.LoveNote - 已保存的情书
	//   error - 字段缺失或写入失败
	AddNote(ctx context.Context, req *AddNoteRequest) (*database.LoveNote, error)

	// UpdateNote 整体覆盖标题、内容、作者、置顶和心情
	// 参数:
	//   ctx - 请求上下文
	//   note - 需要包含 ID
	// 返回:
	//   *database.LoveNote - 更新后的情书
	//   error - ID 不存在时返回 ErrNoteNotFound
	UpdateNote(ctx context.Context, note *database.LoveNote) (*database.LoveNote, error)

	// TogglePin 只更新置顶字段
	// 参数:
	//   ctx - 请求上下文
	//   id - 情书ID
	//   value - 目标置顶状态
	// 返回:
	//   error - ID 不存在时返回 ErrNoteNotFound
	TogglePin(ctx context.Context, id string, value bool) error

	// DeleteNote 删除情书
	// 参数:
	//   ctx - 请求上下文
	//   id - 情书ID
	// 返回:
	//   error - 已被删除时返回 ErrNoteNotFound
	DeleteNote(ctx context.Context, id string) error

	// ListNotes 一次性读取全部情书
	ListNotes(ctx context.Context) ([]database.LoveNote, error)

	// GetNote 按ID读取
	GetNote(ctx context.Context, id string) (*database.LoveNote, error)

	// Refresh 重新读取并推送给订阅者，收到其他实例的变更通知时调用
	Refresh(ctx context.Context) error

	// Listeners 当前订阅者数量
	Listeners() int

	// Close 释放全部订阅
	Close()
}

// AddNoteRequest 新增情书请求
type AddNoteRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Author   string `json:"author"`
	Mood     string `json:"mood"`
	IsPinned bool   `json:"isPinned"`
}

// Validate 标题、内容和作者都必须填写
func (r *AddNoteRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Content) == "" || strings.TrimSpace(r.Author) == "" {
		return apperrors.ErrNoteFieldsRequiredError
	}
	return nil
}

// loveNoteService 情书服务实现
type loveNoteService struct {
	db       *gorm.DB
	feed     *livequery.Feed[database.LoveNote]
	notifier changefeed.Notifier
	now      func() time.Time
}

// Option 服务选项
type Option func(*loveNoteService)

// WithClock 替换时钟，测试中用于得到确定的创建时间
func WithClock(now func() time.Time) Option {
	return func(s *loveNoteService) { s.now = now }
}

// NewLoveNoteService 创建情书服务实例
// 参数:
//   db - 数据库连接
//   notifier - 跨实例变更通知，传 nil 表示单实例
func NewLoveNoteService(db *gorm.DB, notifier changefeed.Notifier, opts ...Option) LoveNoteService {
	if notifier == nil {
		notifier = changefeed.Noop{}
	}
	s := &loveNoteService{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.feed = livequery.New(Collection, s.ListNotes)
	return s
}

func (s *loveNoteService) Subscribe(callback func([]database.LoveNote)) func() {
	return s.feed.Subscribe(callback)
}

func (s *loveNoteService) AddNote(ctx context.Context, req *AddNoteRequest) (*database.LoveNote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	note := &database.LoveNote{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		Author:    strings.TrimSpace(req.Author),
		IsPinned:  req.IsPinned,
		Mood:      req.Mood,
		CreatedAt: s.now().UTC(), // 按文本排序，统一时区
	}
	if note.Mood == "" {
		note.Mood = database.DefaultMood
	}

	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		logger.Errorf("新增情书失败: %v", err)
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, err)
	}

	logger.WithFields(map[string]interface{}{"note_id": note.ID, "author": note.Author}).Info("情书已新增")
	s.changed(ctx)
	return note, nil
}

func (s *loveNoteService) UpdateNote(ctx context.Context, note *database.LoveNote) (*database.LoveNote, error) {
	mood := note.Mood
	if mood == "" {
		mood = database.DefaultMood
	}

	result := s.db.WithContext(ctx).Model(&database.LoveNote{}).
		Where("id = ?", note.ID).
		Updates(map[string]interface{}{
			"title":     note.Title,
			"content":   note.Content,
			"author":    note.Author,
			"is_pinned": note.IsPinned,
			"mood":      mood,
		})
	if result.Error != nil {
		logger.Errorf("更新情书失败: id=%s, 错误=%v", note.ID, result.Error)
		return nil, apperrors.Wrap(apperrors.ErrDatabaseUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.ErrNoteNotFound, "id %s", note.ID)
	}

	logger.WithField("note_id", note.ID).Info("情书已更新")
	s.changed(ctx)
	return s.GetNote(ctx, note.ID)
}

func (s *loveNoteService) TogglePin(ctx context.Context, id string, value bool) error {
	result := s.db.WithContext(ctx).Model(&database.LoveNote{}).
		Where("id = ?", id).
		Update("is_pinned", value)
	if result.Error != nil {
		logger.Errorf("更新置顶失败: id=%s, 错误=%v", id, result.Error)
		return apperrors.Wrap(apperrors.ErrDatabaseUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrNoteNotFound, "id %s", id)
	}

	logger.WithFields(map[string]interface{}{"note_id": id, "pinned": value}).Info("置顶状态已更新")
	s.changed(ctx)
	return nil
}

func (s *loveNoteService) DeleteNote(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&database.LoveNote{})
	if result.Error != nil {
		logger.Errorf("删除情书失败: id=%s, 错误=%v", id, result.Error)
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrNoteNotFound, "id %s", id)
	}

	logger.WithField("note_id", id).Info("情书已删除")
	s.changed(ctx)
	return nil
}

func (s *loveNoteService) ListNotes(ctx context.Context) ([]database.LoveNote, error) {
	var notes []database.LoveNote
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&notes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	now := s.now()
	for i := range notes {
		notes[i] = notes[i].Sanitize(now)
	}
	return notes, nil
}

func (s *loveNoteService) GetNote(ctx context.Context, id string) (*database.LoveNote, error) {
	var note database.LoveNote
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if apperrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Newf(apperrors.ErrNoteNotFound, "id %s", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	note = note.Sanitize(s.now())
	return &note, nil
}

func (s *loveNoteService) Refresh(ctx context.Context) error {
	return s.feed.Refresh(ctx)
}

func (s *loveNoteService) Listeners() int {
	return s.feed.Len()
}

func (s *loveNoteService) Close() {
	s.feed.Close()
}

// changed 写入确认后刷新本地订阅并通知其他实例。
// 请求上下文被取消时依然要刷新，否则订阅者会停留在旧列表上
func (s *loveNoteService) changed(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_ = s.feed.Refresh(ctx)
	s.notifier.Notify(ctx, Collection)
}
