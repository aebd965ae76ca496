package notesboard

import (
	"time"

	"github.com/weiwangfds/keepsake/internal/database"
)

// SampleNotes 远端从未返回数据时展示的示例情书，每次调用返回新的副本
func SampleNotes() []database.LoveNote {
	return []database.LoveNote{
		{
			ID:        "1",
			Title:     "Just Because",
			Content:   "I was just thinking about how lucky I am to have you in my life. Your smile makes even the cloudiest days feel sunny. Thank you for being my person.",
			Author:    "Alex",
			CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			IsPinned:  true,
			Mood:      "😊",
		},
		{
			ID:        "2",
			Title:     "After Our Hike",
			Content:   "Today was absolutely perfect! Watching you conquer that trail with such determination was amazing. I love how adventurous you are and how you push me to try new things.",
			Author:    "Sam",
			CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			IsPinned:  false,
			Mood:      "😍",
		},
		{
			ID:        "3",
			Title:     "Morning Coffee Thoughts",
			Content:   "Waking up next to you never gets old. These quiet morning moments with our coffee are some of my favorite parts of the day. Here's to many more lazy Sunday mornings together.",
			Author:    "Alex",
			CreatedAt: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
			IsPinned:  true,
			Mood:      "☕",
		},
	}
}
