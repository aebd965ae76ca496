package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// AliyunProvider 阿里云OSS
type AliyunProvider struct {
	client  *oss.Client
	bucket  *oss.Bucket
	name    string
	baseURL string
}

// NewAliyunProvider 创建阿里云OSS提供商实例
func NewAliyunProvider(cfg config.StorageConfig) (*AliyunProvider, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://oss-%s.aliyuncs.com", cfg.Region)
		logger.Infof("[阿里云OSS] 使用默认区域域名: %s", endpoint)
	}

	client, err := oss.New(endpoint, cfg.AccessKey, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", cfg.Bucket, err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.oss-%s.aliyuncs.com", cfg.Bucket, cfg.Region)
	}

	return &AliyunProvider{client: client, bucket: bucket, name: cfg.Bucket, baseURL: baseURL}, nil
}

func (p *AliyunProvider) Name() string { return "aliyun" }

func (p *AliyunProvider) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	options := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}
	if err := p.bucket.PutObject(key, r, options...); err != nil {
		logger.Errorf("[阿里云OSS] 上传失败, 对象键: %s, 错误: %v", key, err)
		return fmt.Errorf("failed to upload file to aliyun oss: %w", err)
	}
	logger.Infof("[阿里云OSS] 成功上传文件: %s", key)
	return nil
}

func (p *AliyunProvider) URL(_ context.Context, key string) (string, error) {
	return joinURL(p.baseURL, key), nil
}

func (p *AliyunProvider) Delete(ctx context.Context, key string) error {
	if err := p.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete file from aliyun oss: %w", err)
	}
	return nil
}

func (p *AliyunProvider) Ping(context.Context) error {
	if _, err := p.client.GetBucketInfo(p.name); err != nil {
		return fmt.Errorf("failed to reach aliyun oss: %w", err)
	}
	return nil
}
