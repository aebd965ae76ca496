package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/weiwangfds/keepsake/config"
)

// presignTTL 预签名链接的最长有效期
const presignTTL = 7 * 24 * time.Hour

// MinioProvider MinIO 或任意 S3 兼容存储
type MinioProvider struct {
	client  *minio.Client
	bucket  string
	baseURL string

	ensureOnce sync.Once
	ensureErr  error
}

// NewMinioProvider 创建 MinIO 提供商实例
func NewMinioProvider(cfg config.StorageConfig) (*MinioProvider, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is empty")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinioProvider{
		client:  client,
		bucket:  strings.TrimSpace(cfg.Bucket),
		baseURL: cfg.PublicBaseURL,
	}, nil
}

func (p *MinioProvider) Name() string { return "minio" }

// EnsureBucket 存储桶不存在时创建，只执行一次
func (p *MinioProvider) EnsureBucket(ctx context.Context) error {
	if p.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}
	p.ensureOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucket)
		if err != nil {
			p.ensureErr = err
			return
		}
		if !exists {
			p.ensureErr = p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{})
		}
	})
	if p.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", p.bucket, p.ensureErr)
	}
	return nil
}

func (p *MinioProvider) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := p.EnsureBucket(ctx); err != nil {
		return err
	}
	_, err := p.client.PutObject(ctx, p.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object to s3: %w", err)
	}
	return nil
}

// URL 配置了公开地址时直接拼接，否则返回预签名链接
func (p *MinioProvider) URL(ctx context.Context, key string) (string, error) {
	if p.baseURL != "" {
		return joinURL(p.baseURL, key), nil
	}
	presigned, err := p.client.PresignedGetObject(ctx, p.bucket, key, presignTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return presigned.String(), nil
}

func (p *MinioProvider) Delete(ctx context.Context, key string) error {
	if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (p *MinioProvider) Ping(ctx context.Context) error {
	return p.EnsureBucket(ctx)
}
