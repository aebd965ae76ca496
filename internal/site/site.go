// Package site 生日页面的静态内容：倒计时、媒体地址与心情表情
package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/weiwangfds/keepsake/config"
)

// Moods 可选的心情表情
var Moods = []string{"😊", "❤️", "🥰", "😍", "🤗", "☕", "🏔️", "🌟", "🎉", "💕"}

// mediaFolder 主机上存放图片和视频的目录，空格需要转义
const mediaFolder = "pics%20and%20vid"

// Countdown 距离生日的剩余时间
type Countdown struct {
	Days     int64 `json:"days"`
	Hours    int64 `json:"hours"`
	Minutes  int64 `json:"minutes"`
	Seconds  int64 `json:"seconds"`
	Arrived  bool  `json:"isBirthday"`
	TargetAt int64 `json:"targetAt"` // 毫秒时间戳
}

// Site 站点信息
type Site struct {
	name     string
	hostname string
	birthday time.Time
}

// New 根据配置创建站点信息
func New(cfg config.SiteConfig) (*Site, error) {
	birthday, err := cfg.BirthdayTime()
	if err != nil {
		return nil, fmt.Errorf("invalid site.birthday_date %q: %w", cfg.BirthdayDate, err)
	}
	return &Site{
		name:     cfg.Name,
		hostname: strings.TrimRight(cfg.Hostname, "/"),
		birthday: birthday,
	}, nil
}

// Name 寿星的名字
func (s *Site) Name() string { return s.name }

// Countdown 计算 now 到生日的剩余时间，已到达时全部为 0
func (s *Site) Countdown(now time.Time) Countdown {
	c := Countdown{TargetAt: s.birthday.UnixMilli()}
	diff := s.birthday.Sub(now)
	if diff <= 0 {
		c.Arrived = true
		return c
	}
	total := int64(diff / time.Second)
	c.Days = total / 86400
	c.Hours = total / 3600 % 24
	c.Minutes = total / 60 % 60
	c.Seconds = total % 60
	return c
}

// Greeting 横幅标题
func (s *Site) Greeting(now time.Time) string {
	if s.Countdown(now).Arrived {
		return fmt.Sprintf("Happy Birthday, %s! 🎉", s.name)
	}
	return fmt.Sprintf("Happy birthday month, %s! 🎂", s.name)
}

// MediaAsset 生成媒体文件地址 {host}/pics%20and%20vid/{path}
func (s *Site) MediaAsset(path string) string {
	return fmt.Sprintf("%s/%s/%s", s.hostname, mediaFolder, strings.TrimLeft(path, "/"))
}

// HeroBackground 首页背景图
func (s *Site) HeroBackground() string {
	return s.hostname + "/sample.jpg"
}
