// Package changefeed 在多个实例之间广播"某集合已变更"的通知，
// 收到通知的实例各自刷新本地的实时列表。
package changefeed

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/weiwangfds/keepsake/config"
	"github.com/weiwangfds/keepsake/internal/logger"
)

// Notifier 变更通知
type Notifier interface {
	// Notify 广播集合变更，失败只记录日志
	Notify(ctx context.Context, collection string)
	// Listen 阻塞接收其他实例的通知，直到 ctx 结束
	Listen(ctx context.Context, handler func(collection string)) error
	Close() error
}

// New 根据配置创建通知器，未配置 Redis 地址时为单实例模式
func New(cfg config.RedisConfig) Notifier {
	if cfg.Addr == "" {
		logger.Info("未配置 Redis，变更通知仅在本实例内生效")
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedis(client, cfg.Channel)
}

// Noop 单实例模式
type Noop struct{}

func (Noop) Notify(context.Context, string) {}

func (Noop) Listen(ctx context.Context, _ func(string)) error {
	<-ctx.Done()
	return nil
}

func (Noop) Close() error { return nil }

// Redis 基于 pub/sub 的通知器。消息格式为 "{实例ID}|{集合名}"，
// 本实例发出的消息会被忽略
type Redis struct {
	client     *redis.Client
	channel    string
	instanceID string
}

// NewRedis 使用已有客户端创建通知器
func NewRedis(client *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = "keepsake:changes"
	}
	return &Redis{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
	}
}

// Notify 发布变更通知
func (r *Redis) Notify(ctx context.Context, collection string) {
	if err := r.client.Publish(ctx, r.channel, r.instanceID+"|"+collection).Err(); err != nil {
		logger.WithFields(map[string]interface{}{
			"channel":    r.channel,
			"collection": collection,
		}).Warnf("发布变更通知失败: %v", err)
	}
}

// Listen 订阅频道并把其他实例的通知交给 handler
func (r *Redis) Listen(ctx context.Context, handler func(collection string)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// 等待订阅确认，确保之后的通知不会丢失
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	logger.Infof("已订阅变更频道: %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			origin, collection, found := strings.Cut(msg.Payload, "|")
			if !found || origin == r.instanceID {
				continue
			}
			handler(collection)
		}
	}
}

// Close 关闭 Redis 连接
func (r *Redis) Close() error {
	return r.client.Close()
}
