package database

import "time"

// MediaType 媒体类型
type MediaType string

const (
	MediaPhoto MediaType = "photo"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaText  MediaType = "text"
)

// Valid 是否为已知类型
func (t MediaType) Valid() bool {
	switch t {
	case MediaPhoto, MediaVideo, MediaAudio, MediaText:
		return true
	}
	return false
}

// Normalize 未知或空类型按照片处理
func (t MediaType) Normalize() MediaType {
	if t.Valid() {
		return t
	}
	return MediaPhoto
}

// MediaEntry 图库/时间线条目
// URL 与 TextContent 按类型二选一，存储层不做校验
type MediaEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"not null;size:255" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Category    string    `gorm:"size:100" json:"category,omitempty"`
	MediaType   MediaType `gorm:"size:10;not null" json:"mediaType"`
	URL         string    `gorm:"size:1000" json:"url,omitempty"`
	TextContent string    `gorm:"type:text" json:"textContent,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

// TableName 表名
func (MediaEntry) TableName() string {
	return "media_entries"
}

// Sanitize 读出后修正不完整的记录
func (e MediaEntry) Sanitize(now time.Time) MediaEntry {
	e.MediaType = e.MediaType.Normalize()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return e
}
