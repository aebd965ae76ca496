package database

import "time"

// UploadRecord 已上传对象的记录
// 条目删除时不删除对象，这里保留每次上传的存储位置以便排查
type UploadRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ObjectKey   string    `gorm:"uniqueIndex;not null;size:500" json:"objectKey"` // {folder}/{毫秒时间戳}-{原文件名}
	FileName    string    `gorm:"not null;size:255" json:"fileName"`
	ContentType string    `gorm:"size:100" json:"contentType"`
	Size        int64     `gorm:"not null" json:"size"`
	Provider    string    `gorm:"size:20" json:"provider"`
	URL         string    `gorm:"size:1000" json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName 表名
func (UploadRecord) TableName() string {
	return "upload_records"
}
