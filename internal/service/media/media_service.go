// Package media 管理图库与时间线条目以及媒体文件上传
package media

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weiwangfds/keepsake/internal/changefeed"
	"github.com/weiwangfds/keepsake/internal/database"
	apperrors "github.com/weiwangfds/keepsake/internal/errors"
	"github.com/weiwangfds/keepsake/internal/livequery"
	"github.com/weiwangfds/keepsake/internal/logger"
	"github.com/weiwangfds/keepsake/internal/service/storage"
	"gorm.io/gorm"
)

// Collection 集合名
const Collection = "mediaEntries"

// MediaService 媒体条目服务接口
type MediaService interface {
	// Subscribe 订阅条目列表（按创建时间倒序），返回取消函数
	Subscribe(callback func([]database.MediaEntry)) func()
	// CreateEntry 新增条目，ID 与创建时间由服务端生成
	CreateEntry(ctx context.Context, req *CreateEntryRequest) (*database.MediaEntry, error)
	// UploadFile 上传文件并返回可公开访问的地址
	UploadFile(ctx context.Context, fileName string, r io.Reader, size int64, contentType string) (string, error)
	// DiscardUpload 删除一次上传的对象及其记录，用于条目保存失败后的回滚
	DiscardUpload(ctx context.Context, url string) error
	ListEntries(ctx context.Context) ([]database.MediaEntry, error)
	GetEntry(ctx context.Context, id string) (*database.MediaEntry, error)
	// DeleteEntry 只删除记录，已上传的文件保留
	DeleteEntry(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	Listeners() int
	Close()
}

// CreateEntryRequest 新增条目请求
type CreateEntryRequest struct {
	Title       string             `json:"title" form:"title"`
	Description string             `json:"description" form:"description"`
	Category    string             `json:"category" form:"category"`
	MediaType   database.MediaType `json:"mediaType" form:"mediaType"`
	URL         string             `json:"url" form:"url"`
	TextContent string             `json:"textContent" form:"textContent"`
}

// Options 服务配置
type Options struct {
	Folder        string           // 上传目录，默认 media
	MaxUploadSize int64            // 单个文件大小上限，0 表示不限制
	Clock         func() time.Time // 为空时使用 time.Now
}

type mediaService struct {
	db       *gorm.DB
	provider storage.Provider
	notifier changefeed.Notifier
	opts     Options
	feed     *livequery.Feed[database.MediaEntry]
}

// NewMediaService 创建媒体服务实例
func NewMediaService(db *gorm.DB, provider storage.Provider, notifier changefeed.Notifier, opts Options) MediaService {
	if notifier == nil {
		notifier = changefeed.Noop{}
	}
	if opts.Folder == "" {
		opts.Folder = "media"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &mediaService{
		db:       db,
		provider: provider,
		notifier: notifier,
		opts:     opts,
	}
	s.feed = livequery.New(Collection, s.ListEntries)
	return s
}

func (s *mediaService) Subscribe(callback func([]database.MediaEntry)) func() {
	return s.feed.Subscribe(callback)
}

func (s *mediaService) CreateEntry(ctx context.Context, req *CreateEntryRequest) (*database.MediaEntry, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.ErrInvalidParameters.WithDetails("title is required")
	}

	entry := &database.MediaEntry{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		MediaType:   req.MediaType.Normalize(),
		URL:         req.URL,
		TextContent: req.TextContent,
		CreatedAt:   s.opts.Clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Errorf("保存条目失败: %v", err)
		return nil, apperrors.Wrap(apperrors.ErrDatabaseInsert, err)
	}

	logger.WithFields(map[string]interface{}{
		"entry_id":   entry.ID,
		"media_type": entry.MediaType,
	}).Info("条目已保存")
	s.changed(ctx)
	return entry, nil
}

func (s *mediaService) UploadFile(ctx context.Context, fileName string, r io.Reader, size int64, contentType string) (string, error) {
	if s.provider == nil {
		return "", apperrors.New(apperrors.ErrStorageUnavailable, apperrors.GetErrorMessage(apperrors.ErrStorageUnavailable))
	}
	if s.opts.MaxUploadSize > 0 && size > s.opts.MaxUploadSize {
		return "", apperrors.Newf(apperrors.ErrUploadTooLarge, "%d > %d bytes", size, s.opts.MaxUploadSize)
	}

	key := storage.ObjectKey(s.opts.Folder, fileName, s.opts.Clock())
	if err := s.provider.Put(ctx, key, r, size, contentType); err != nil {
		logger.WithField("object_key", key).Errorf("上传文件失败: %v", err)
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}
	url, err := s.provider.URL(ctx, key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUploadFailed, err)
	}

	record := &database.UploadRecord{
		ObjectKey:   key,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
		Provider:    s.provider.Name(),
		URL:         url,
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		// 文件已经写入，记录失败不影响返回地址
		logger.WithField("object_key", key).Warnf("保存上传记录失败: %v", err)
	}

	logger.WithFields(map[string]interface{}{
		"object_key": key,
		"size":       size,
		"provider":   s.provider.Name(),
	}).Info("文件上传成功")
	return url, nil
}

func (s *mediaService) DiscardUpload(ctx context.Context, url string) error {
	if s.provider == nil {
		return apperrors.New(apperrors.ErrStorageUnavailable, apperrors.GetErrorMessage(apperrors.ErrStorageUnavailable))
	}
	var record database.UploadRecord
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&record).Error
	if apperrors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Newf(apperrors.ErrNotFound, "upload %s", url)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	if err := s.provider.Delete(ctx, record.ObjectKey); err != nil {
		logger.WithField("object_key", record.ObjectKey).Errorf("删除对象失败: %v", err)
		return apperrors.Wrap(apperrors.ErrStorageUnavailable, err)
	}
	if err := s.db.WithContext(ctx).Delete(&record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, err)
	}
	logger.WithField("object_key", record.ObjectKey).Info("已回滚上传的对象")
	return nil
}

func (s *mediaService) ListEntries(ctx context.Context) ([]database.MediaEntry, error) {
	var entries []database.MediaEntry
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	now := s.opts.Clock()
	for i := range entries {
		entries[i] = entries[i].Sanitize(now)
	}
	return entries, nil
}

func (s *mediaService) GetEntry(ctx context.Context, id string) (*database.MediaEntry, error) {
	var entry database.MediaEntry
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if apperrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Newf(apperrors.ErrEntryNotFound, "id %s", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	entry = entry.Sanitize(s.opts.Clock())
	return &entry, nil
}

func (s *mediaService) DeleteEntry(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&database.MediaEntry{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrDatabaseDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Newf(apperrors.ErrEntryNotFound, "id %s", id)
	}
	logger.WithField("entry_id", id).Info("条目已删除")
	s.changed(ctx)
	return nil
}

func (s *mediaService) Refresh(ctx context.Context) error { return s.feed.Refresh(ctx) }

func (s *mediaService) Listeners() int { return s.feed.Len() }

func (s *mediaService) Close() { s.feed.Close() }

func (s *mediaService) changed(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_ = s.feed.Refresh(ctx)
	s.notifier.Notify(ctx, Collection)
}
