package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/weiwangfds/keepsake/internal/logger"
)

// LocalProvider 把对象写入本地目录，由 HTTP 服务以静态文件方式提供
type LocalProvider struct {
	root    string
	baseURL string
}

// NewLocalProvider 创建本地存储
func NewLocalProvider(root, baseURL string) (*LocalProvider, error) {
	if root == "" {
		root = "data/uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", root, err)
	}
	return &LocalProvider{root: root, baseURL: baseURL}, nil
}

func (p *LocalProvider) Name() string { return "local" }

// Root 存储根目录
func (p *LocalProvider) Root() string { return p.root }

func (p *LocalProvider) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create dir: %w", err)
	}

	// 先写临时文件再重命名，避免读到写了一半的对象
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move object %s: %w", key, err)
	}

	logger.Debugf("[本地存储] 写入对象: %s", target)
	return nil
}

func (p *LocalProvider) URL(_ context.Context, key string) (string, error) {
	return joinURL(p.baseURL, key), nil
}

func (p *LocalProvider) Delete(_ context.Context, key string) error {
	target, err := p.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (p *LocalProvider) Ping(context.Context) error {
	info, err := os.Stat(p.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", p.root)
	}
	return nil
}

// resolve 把对象键映射为根目录下的路径，拒绝跳出根目录的键
func (p *LocalProvider) resolve(key string) (string, error) {
	target := filepath.Join(p.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(p.root, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return target, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
