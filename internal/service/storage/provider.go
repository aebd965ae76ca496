// Package storage 对象存储抽象，支持阿里云OSS、腾讯云COS、七牛云Kodo、MinIO/S3 以及本地磁盘
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// ErrUnsupportedProvider 不支持的存储提供商
var ErrUnsupportedProvider = errors.New("unsupported storage provider")

// Provider 存储提供商接口
type Provider interface {
	// Name 提供商名称，如 aliyun、minio
	Name() string
	// Put 写入对象，size 未知时传 -1
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// URL 返回对象可公开访问的地址
	URL(ctx context.Context, key string) (string, error)
	// Delete 删除对象
	Delete(ctx context.Context, key string) error
	// Ping 检查存储是否可用
	Ping(ctx context.Context) error
}

// NewProvider 根据配置创建存储提供商
func NewProvider(cfg config.StorageConfig) (Provider, error) {
	logger.Infof("初始化存储提供商: %s, 存储桶: %s", cfg.Provider, cfg.Bucket)

	switch cfg.Provider {
	case "local", "":
		return NewLocalProvider(cfg.LocalDir, cfg.PublicBaseURL)
	case "aliyun":
		return NewAliyunProvider(cfg)
	case "tencent":
		return NewTencentProvider(cfg)
	case "qiniu":
		return NewQiniuProvider(cfg)
	case "minio", "s3":
		return NewMinioProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// ObjectKey 生成对象键 {folder}/{毫秒时间戳}-{原文件名}
func ObjectKey(folder, fileName string, at time.Time) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "media"
	}
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%d-%s", folder, at.UnixMilli(), name)
}

// joinURL 拼接基础地址和对象键，对象键中的空格等字符需要转义
func joinURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

func withScheme(host string, useSSL bool) string {
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	if useSSL {
		return "https://" + host
	}
	return "http://" + host
}
