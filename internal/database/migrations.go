package database

import (
	"github.com/weiwangfds/keepsake/internal/logger"
	"gorm.io/gorm"
)

// Migrate 迁移内容表并创建按创建时间倒序的索引
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&MediaEntry{},
		&LoveNote{},
		&UploadRecord{},
	); err != nil {
		return err
	}

	indexes := []string{
		// 实时列表都按创建时间倒序读取
		"CREATE INDEX IF NOT EXISTS idx_media_entries_created ON media_entries(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_love_notes_created ON love_notes(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_love_notes_pinned ON love_notes(is_pinned, created_at DESC)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Errorf("创建索引失败: %s, 错误: %v", stmt, err)
			return err
		}
	}
	return nil
}
