package database

import "time"

// DefaultMood 未选择心情时使用的表情
const DefaultMood = "😊"

// LoveNote 情书
// 置顶与否只由 IsPinned 决定，不单独保存置顶列表
type LoveNote struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    string    `gorm:"not null;size:100" json:"author"`
	IsPinned  bool      `gorm:"not null;default:false" json:"isPinned"`
	Mood      string    `gorm:"size:32" json:"mood"`
	CreatedAt time.Time `gorm:"not null" json:"date"`
}

// TableName 表名
func (LoveNote) TableName() string {
	return "love_notes"
}

// Sanitize 补全缺失的心情和时间
func (n LoveNote) Sanitize(now time.Time) LoveNote {
	if n.Mood == "" {
		n.Mood = DefaultMood
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	return n
}

// Partition 按置顶状态拆分，两部分互不相交且并集为全部
func Partition(notes []LoveNote) (pinned, regular []LoveNote) {
	pinned = make([]LoveNote, 0, len(notes))
	regular = make([]LoveNote, 0, len(notes))
	for _, n := range notes {
		if n.IsPinned {
			pinned = append(pinned, n)
		} else {
			regular = append(regular, n)
		}
	}
	return pinned, regular
}
