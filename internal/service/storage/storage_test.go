package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiwangfds/keepsake/config"
)

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1729641600123)

	tests := []struct {
		name     string
		folder   string
		fileName string
		want     string
	}{
		{"默认目录", "", "cake.jpg", "media/1729641600123-cake.jpg"},
		{"自定义目录", "/gallery/", "beach day.mp4", "gallery/1729641600123-beach day.mp4"},
		{"去掉路径", "media", "../../etc/passwd", "media/1729641600123-passwd"},
		{"windows 路径", "media", `C:\photos\us.png`, "media/1729641600123-us.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.folder, tt.fileName, at))
		})
	}
}

func TestLocalProvider(t *testing.T) {
	root := t.TempDir()
	p, err := NewLocalProvider(root, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key := "media/1-first date.jpg"
	require.NoError(t, p.Put(ctx, key, strings.NewReader("jpeg"), 4, "image/jpeg"))

	data, err := os.ReadFile(filepath.Join(root, "media", "1-first date.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	url, err := p.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/media/1-first%20date.jpg", url)

	require.NoError(t, p.Ping(ctx))
	require.NoError(t, p.Delete(ctx, key))
	require.NoError(t, p.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "media", "1-first date.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalProviderRejectsEscapingKeys(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "")
	require.NoError(t, err)
	assert.Error(t, p.Put(context.Background(), "../outside.txt", strings.NewReader("x"), 1, ""))
}

func TestLocalProviderHonorsCancel(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Put(ctx, "media/a.txt", strings.NewReader("x"), 1, ""), context.Canceled)
}

func TestNewProvider(t *testing.T) {
	t.Run("不支持的提供商", func(t *testing.T) {
		_, err := NewProvider(config.StorageConfig{Provider: "dropbox"})
		assert.True(t, errors.Is(err, ErrUnsupportedProvider))
	})

	t.Run("本地", func(t *testing.T) {
		p, err := NewProvider(config.StorageConfig{Provider: "local", LocalDir: t.TempDir()})
		require.NoError(t, err)
		assert.Equal(t, "local", p.Name())
	})

	t.Run("阿里云默认域名", func(t *testing.T) {
		p, err := NewProvider(config.StorageConfig{
			Provider: "aliyun", Bucket: "keepsake", Region: "cn-hangzhou",
			AccessKey: "ak", SecretKey: "sk",
		})
		require.NoError(t, err)
		url, err := p.URL(context.Background(), "media/1-a.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://keepsake.oss-cn-hangzhou.aliyuncs.com/media/1-a.jpg", url)
	})

	t.Run("腾讯云对象地址", func(t *testing.T) {
		p, err := NewProvider(config.StorageConfig{
			Provider: "tencent", Bucket: "keepsake-1250000000", Region: "ap-guangzhou",
			AccessKey: "ak", SecretKey: "sk",
		})
		require.NoError(t, err)
		url, err := p.URL(context.Background(), "media/1-a.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://keepsake-1250000000.cos.ap-guangzhou.myqcloud.com/media/1-a.jpg", url)
	})

	t.Run("七牛云需要下载域名", func(t *testing.T) {
		_, err := NewProvider(config.StorageConfig{Provider: "qiniu", Bucket: "b", Region: "z0"})
		assert.Error(t, err)

		p, err := NewProvider(config.StorageConfig{
			Provider: "qiniu", Bucket: "b", Region: "z0",
			AccessKey: "ak", SecretKey: "sk", PublicBaseURL: "cdn.example.com", UseSSL: true,
		})
		require.NoError(t, err)
		url, err := p.URL(context.Background(), "media/1-a.jpg")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/media/1-a.jpg", url)
	})

	t.Run("MinIO 公开地址", func(t *testing.T) {
		p, err := NewProvider(config.StorageConfig{
			Provider: "minio", Endpoint: "http://localhost:9000", Bucket: "keepsake",
			AccessKey: "minio", SecretKey: "minio123", PublicBaseURL: "http://localhost:9000/keepsake",
		})
		require.NoError(t, err)
		url, err := p.URL(context.Background(), "media/1-a.jpg")
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/keepsake/media/1-a.jpg", url)
	})

	t.Run("MinIO 缺少地址", func(t *testing.T) {
		_, err := NewProvider(config.StorageConfig{Provider: "minio"})
		assert.Error(t, err)
	})
}
