// Package livequery 提供进程内的实时查询：订阅者先收到当前完整列表，
// 之后每次写入确认后再收到新的完整列表。
package livequery

import (
	"context"
	"sync"

	"github.com/weiwangfds/keepsake/internal/logger"
)

// Loader 从存储中读取完整的有序列表
type Loader[T any] func(ctx context.Context) ([]T, error)

// Feed 一个集合的实时列表
type Feed[T any] struct {
	name   string
	loader Loader[T]

	refreshMu sync.Mutex // 串行化 Refresh，避免旧结果覆盖新结果

	mu        sync.Mutex
	snapshot  []T
	loaded    bool
	closed    bool
	nextID    uint64
	listeners map[uint64]*listener[T]
}

type listener[T any] struct {
	callback func([]T)
	signal   chan struct{}
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	pending []T
	dirty   bool
}

// New 创建 Feed，name 仅用于日志
func New[T any](name string, loader Loader[T]) *Feed[T] {
	return &Feed[T]{
		name:      name,
		loader:    loader,
		listeners: make(map[uint64]*listener[T]),
	}
}

// Subscribe 注册回调并返回取消函数，取消函数可以重复调用。
// 已加载过时立即异步投递当前列表，否则触发一次加载。
func (f *Feed[T]) Subscribe(callback func([]T)) func() {
	l := &listener[T]{
		callback: callback,
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return func() {}
	}
	id := f.nextID
	f.nextID++
	f.listeners[id] = l
	loaded := f.loaded
	if loaded {
		l.offer(f.snapshot)
	}
	f.mu.Unlock()

	go l.run()

	if !loaded {
		go func() {
			if err := f.Refresh(context.Background()); err != nil {
				logger.Warnf("[%s] 初始加载失败: %v", f.name, err)
			}
		}()
	}

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
		l.stop()
	}
}

// Publish 替换当前列表并通知所有订阅者，不会等待订阅者处理
func (f *Feed[T]) Publish(snapshot []T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.snapshot = snapshot
	f.loaded = true
	for _, l := range f.listeners {
		l.offer(snapshot)
	}
}

// Refresh 通过 loader 重新读取并发布。读取失败时保留上一次的列表
func (f *Feed[T]) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	items, err := f.loader(ctx)
	if err != nil {
		logger.WithField("feed", f.name).Errorf("刷新失败，保留上一次结果: %v", err)
		return err
	}
	f.Publish(items)
	return nil
}

// Snapshot 返回当前列表的副本
func (f *Feed[T]) Snapshot() ([]T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.snapshot), f.loaded
}

// Len 当前订阅者数量
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// Name 集合名
func (f *Feed[T]) Name() string {
	return f.name
}

// Close 释放全部订阅者，之后的 Subscribe 与 Publish 都不再生效
func (f *Feed[T]) Close() {
	f.mu.Lock()
	f.closed = true
	listeners := f.listeners
	f.listeners = make(map[uint64]*listener[T])
	f.mu.Unlock()

	for _, l := range listeners {
		l.stop()
	}
}

// offer 只保留最新的一份列表，慢订阅者不会积压旧数据
func (l *listener[T]) offer(snapshot []T) {
	l.mu.Lock()
	l.pending = snapshot
	l.dirty = true
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *listener[T]) run() {
	for {
		select {
		case <-l.done:
			return
		case <-l.signal:
		}

		l.mu.Lock()
		if !l.dirty {
			l.mu.Unlock()
			continue
		}
		items := clone(l.pending)
		l.dirty = false
		l.mu.Unlock()

		select {
		case <-l.done:
			return
		default:
		}
		l.callback(items)
	}
}

func (l *listener[T]) stop() {
	l.once.Do(func() { close(l.done) })
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
