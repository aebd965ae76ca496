// Package settings 界面状态（深色模式与当前视图），启动时读取、修改时写回 TOML 文件
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// View 当前视图
type View string

const (
	ViewBirthday View = "birthday"
	ViewStory    View = "story"
	ViewAdmin    View = "admin"
)

// Normalize 未知视图回退到 birthday
func (v View) Normalize() View {
	switch v {
	case ViewBirthday, ViewStory, ViewAdmin:
		return v
	}
	return ViewBirthday
}

// Settings 界面状态
type Settings struct {
	DarkMode bool `mapstructure:"dark_mode" json:"darkMode"`
	View     View `mapstructure:"view" json:"view"`
}

// Defaults 默认设置
func Defaults() Settings {
	return Settings{DarkMode: false, View: ViewBirthday}
}

// Load 从文件读取设置，文件不存在时返回默认值
func Load(path string) (Settings, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("read settings %s: %w", path, err)
	}

	s := Defaults()
	if err := v.Unmarshal(&s); err != nil {
		return Defaults(), fmt.Errorf("decode settings %s: %w", path, err)
	}
	s.View = s.View.Normalize()
	return s, nil
}

// Save 写入设置
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	v := newViper(path)
	v.Set("dark_mode", s.DarkMode)
	v.Set("view", string(s.View.Normalize()))
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	return v
}

// Store 应用内共享的设置
type Store struct {
	path string

	mu        sync.RWMutex
	current   Settings
	listeners []func(Settings)
}

// NewStore 读取设置文件创建 Store
func NewStore(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, current: s}, nil
}

// Get 当前设置
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update 修改并立即写回文件
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	next := s.current
	fn(&next)
	next.View = next.View.Normalize()
	if err := Save(s.path, next); err != nil {
		s.mu.Unlock()
		return s.Get(), err
	}
	s.current = next
	listeners := append(([]func(Settings))(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return next, nil
}

// Save 把当前设置写回文件，关闭服务时调用
func (s *Store) Save() error {
	return Save(s.path, s.Get())
}

// OnChange 注册设置变化回调
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Watch 监听文件的外部修改。文件不存在时先写入当前设置
func (s *Store) Watch() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.Save(); err != nil {
			return err
		}
	}

	v := newViper(s.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read settings %s: %w", s.path, err)
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s.reload()
	})
	v.WatchConfig()
	logger.Infof("监听设置文件: %s", s.path)
	return nil
}

func (s *Store) reload() {
	loaded, err := Load(s.path)
	if err != nil {
		logger.Warnf("重新读取设置失败: %v", err)
		return
	}

	s.mu.Lock()
	if loaded == s.current {
		s.mu.Unlock()
		return
	}
	s.current = loaded
	listeners := append(([]func(Settings))(nil), s.listeners...)
	s.mu.Unlock()

	logger.WithFields(map[string]interface{}{
		"dark_mode": loaded.DarkMode,
		"view":      loaded.View,
	}).Info("设置文件已变更")
	for _, l := range listeners {
		l(loaded)
	}
}
