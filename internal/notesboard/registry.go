package notesboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// Registry 按会话ID管理展示板，空闲超过 ttl 的会话会被回收
type Registry struct {
	store NoteStore
	ttl   time.Duration
	now   func() time.Time
	opts  []Option

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	board    *Board
	lastSeen time.Time
}

// NewRegistry 创建会话注册表，ttl 小于等于 0 时使用 30 分钟
func NewRegistry(store NoteStore, ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		store:    store,
		ttl:      ttl,
		now:      time.Now,
		opts:     opts,
		sessions: make(map[string]*session),
	}
}

// Mount 挂载新的展示板
func (r *Registry) Mount() (string, *Board) {
	id := uuid.NewString()
	board := Mount(r.store, r.opts...)

	r.mu.Lock()
	r.sessions[id] = &session{board: board, lastSeen: r.now()}
	r.mu.Unlock()

	logger.WithField("session_id", id).Info("展示板已挂载")
	return id, board
}

// Get 获取展示板并刷新活跃时间
func (r *Registry) Get(id string) (*Board, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.board, true
}

// Touch 刷新活跃时间，流式连接保持期间定期调用
func (r *Registry) Touch(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Unmount 卸载展示板并释放订阅
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.board.Close()
		logger.WithField("session_id", id).Info("展示板已卸载")
	}
	return ok
}

// Reap 回收过期会话，返回回收数量
func (r *Registry) Reap() int {
	deadline := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*session
	for id, s := range r.sessions {
		if s.lastSeen.Before(deadline) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.board.Close()
	}
	if len(expired) > 0 {
		logger.Infof("回收空闲展示板 %d 个", len(expired))
	}
	return len(expired)
}

// Run 定期回收，直到 ctx 结束
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap()
		}
	}
}

// Len 当前会话数量
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close 卸载全部展示板
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.board.Close()
	}
}
