package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"
	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// TencentProvider 腾讯云COS
type TencentProvider struct {
	client  *cos.Client
	baseURL string
}

// NewTencentProvider 创建腾讯云COS提供商实例
func NewTencentProvider(cfg config.StorageConfig) (*TencentProvider, error) {
	bucketURL := fmt.Sprintf("https://%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.Region)
	if cfg.Endpoint != "" {
		bucketURL = withScheme(cfg.Endpoint, true)
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	return &TencentProvider{client: client, baseURL: cfg.PublicBaseURL}, nil
}

func (p *TencentProvider) Name() string { return "tencent" }

func (p *TencentProvider) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	header := &cos.ObjectPutHeaderOptions{ContentType: contentType}
	if size > 0 {
		header.ContentLength = size
	}
	_, err := p.client.Object.Put(ctx, key, r, &cos.ObjectPutOptions{ObjectPutHeaderOptions: header})
	if err != nil {
		logger.Errorf("[腾讯云COS] 上传失败, 对象键: %s, 错误: %v", key, err)
		return fmt.Errorf("failed to upload file to tencent cos: %w", err)
	}
	logger.Infof("[腾讯云COS] 成功上传文件: %s", key)
	return nil
}

func (p *TencentProvider) URL(_ context.Context, key string) (string, error) {
	if p.baseURL != "" {
		return joinURL(p.baseURL, key), nil
	}
	return p.client.Object.GetObjectURL(key).String(), nil
}

func (p *TencentProvider) Delete(ctx context.Context, key string) error {
	if _, err := p.client.Object.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete file from tencent cos: %w", err)
	}
	return nil
}

func (p *TencentProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Bucket.Head(ctx); err != nil {
		return fmt.Errorf("failed to reach tencent cos: %w", err)
	}
	return nil
}
