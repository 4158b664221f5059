package capability

import (
	"context"
	"sync/atomic"

	"mailadmin/backend/internal/domain"
	"mailadmin/backend/internal/storage"
)

// Cache 进程生命周期内的 schema 能力缓存。
//
// 显式对象按句柄注入消费方，不做包级单例。首个并发调用者允许
// 竞争重复探测：对固定 schema 探测是幂等的，谁后写都等价，
// 因此只用指针原子交换，不加锁。
type Cache struct {
	probe storage.SchemaProber
	value atomic.Pointer[domain.SchemaCapabilities]
}

// NewCache 创建能力缓存。
func NewCache(probe storage.SchemaProber) *Cache {
	return &Cache{probe: probe}
}

// GetOrCompute 返回缓存的能力描述符，缺失时探测一次并缓存。
func (c *Cache) GetOrCompute(ctx context.Context) (domain.SchemaCapabilities, error) {
	if cached := c.value.Load(); cached != nil {
		return *cached, nil
	}

	caps, err := c.probe.DetectCapabilities(ctx)
	if err != nil {
		return domain.NoCapabilities(), err
	}

	c.value.Store(&caps)
	return caps, nil
}

// Refresh 强制重新探测并覆盖缓存，返回最新描述符。
// 只在人工触发时调用，不自动刷新。
func (c *Cache) Refresh(ctx context.Context) (domain.SchemaCapabilities, error) {
	caps, err := c.probe.DetectCapabilities(ctx)
	if err != nil {
		return domain.NoCapabilities(), err
	}

	c.value.Store(&caps)
	return caps, nil
}
