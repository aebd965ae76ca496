package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// QiniuProvider 七牛云Kodo
type QiniuProvider struct {
	mac    *qbox.Mac
	bucket string
	domain string
	region *storage.Region
	useSSL bool
}

// NewQiniuProvider 创建七牛云Kodo提供商实例。
// 配置了区域ID时直接使用，否则按存储桶查询区域
func NewQiniuProvider(cfg config.StorageConfig) (*QiniuProvider, error) {
	mac := qbox.NewMac(cfg.AccessKey, cfg.SecretKey)

	var region *storage.Region
	if cfg.Region != "" {
		r, ok := storage.GetRegionByID(storage.RegionID(cfg.Region))
		if !ok {
			return nil, fmt.Errorf("unknown qiniu region: %s", cfg.Region)
		}
		region = &r
	} else {
		r, err := storage.GetRegion(cfg.AccessKey, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to get qiniu region: %w", err)
		}
		region = r
	}

	domain := cfg.PublicBaseURL
	if domain == "" {
		domain = cfg.Endpoint
	}
	if domain == "" {
		return nil, fmt.Errorf("qiniu requires public_base_url or endpoint as download domain")
	}

	logger.Infof("创建七牛云Kodo提供商: 存储桶=%s, 域名=%s", cfg.Bucket, domain)
	return &QiniuProvider{
		mac:    mac,
		bucket: cfg.Bucket,
		domain: withScheme(domain, cfg.UseSSL),
		region: region,
		useSSL: cfg.UseSSL,
	}, nil
}

func (p *QiniuProvider) Name() string { return "qiniu" }

func (p *QiniuProvider) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	putPolicy := storage.PutPolicy{Scope: fmt.Sprintf("%s:%s", p.bucket, key)}
	upToken := putPolicy.UploadToken(p.mac)

	uploader := storage.NewFormUploader(&storage.Config{
		Region:   p.region,
		UseHTTPS: p.useSSL,
	})
	ret := storage.PutRet{}
	extra := storage.PutExtra{MimeType: contentType}

	if err := uploader.Put(ctx, &ret, upToken, key, r, size, &extra); err != nil {
		logger.Errorf("文件上传失败: 对象键=%s, 错误=%v", key, err)
		return fmt.Errorf("failed to upload file to qiniu kodo: %w", err)
	}
	logger.Infof("文件上传成功: 对象键=%s, 哈希值=%s", key, ret.Hash)
	return nil
}

func (p *QiniuProvider) URL(_ context.Context, key string) (string, error) {
	return storage.MakePublicURLv2(p.domain, key), nil
}

func (p *QiniuProvider) Delete(_ context.Context, key string) error {
	if err := p.manager().Delete(p.bucket, key); err != nil {
		return fmt.Errorf("failed to delete file from qiniu kodo: %w", err)
	}
	return nil
}

func (p *QiniuProvider) Ping(context.Context) error {
	if _, _, _, _, err := p.manager().ListFiles(p.bucket, "", "", "", 1); err != nil {
		return fmt.Errorf("failed to reach qiniu kodo: %w", err)
	}
	return nil
}

func (p *QiniuProvider) manager() *storage.BucketManager {
	return storage.NewBucketManager(p.mac, &storage.Config{Region: p.region, UseHTTPS: p.useSSL})
}
