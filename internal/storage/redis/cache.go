package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mailadmin/backend/internal/domain"
)

// ErrCacheMiss 缓存中没有对应条目。
var ErrCacheMiss = errors.New("cache miss")

// Cache Redis 缓存实现。
//
// 只缓存聚合快照：解码正文和能力描述符都不进缓存，
// 前者按规则每次重建，后者是进程内状态。
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache 创建 Redis 缓存实例。
func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Close 关闭 Redis 连接。
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health 检查 Redis 连接状态。
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

const (
	overviewKey = "stats:overview"
	mailboxKey  = "stats:mailboxes"
)

// CacheOverview 缓存总览统计快照。
func (c *Cache) CacheOverview(ctx context.Context, stats *domain.OverviewStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, overviewKey, data, c.ttl).Err()
}

// GetCachedOverview 读取缓存的总览统计快照。
func (c *Cache) GetCachedOverview(ctx context.Context) (*domain.OverviewStats, error) {
	data, err := c.client.Get(ctx, overviewKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var stats domain.OverviewStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CacheMailboxStats 缓存邮箱统计快照。
func (c *Cache) CacheMailboxStats(ctx context.Context, stats []domain.MailboxStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, mailboxKey, data, c.ttl).Err()
}

// GetCachedMailboxStats 读取缓存的邮箱统计快照。
func (c *Cache) GetCachedMailboxStats(ctx context.Context) ([]domain.MailboxStats, error) {
	data, err := c.client.Get(ctx, mailboxKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var stats []domain.MailboxStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
