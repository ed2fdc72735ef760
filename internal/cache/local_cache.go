package cache

import (
	"sync"
	"time"
)

// LocalCache 进程内 TTL 缓存
//
// 单机部署或 Redis 不可用时的降级方案；多进程部署时各实例
// 互不可见，只能用于允许丢失的数据（如一次性令牌的降级存储）。
type LocalCache struct {
	mu   sync.Mutex
	data map[string]entry
	ttl  time.Duration
	stop chan struct{}
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewLocalCache 创建本地缓存并启动周期清理
func NewLocalCache(defaultTTL time.Duration) *LocalCache {
	c := &LocalCache{
		data: make(map[string]entry),
		ttl:  defaultTTL,
		stop: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Set 写入缓存值，ttl 为 0 时使用默认过期时间
func (c *LocalCache) Set(key, value string, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	c.data[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Get 读取缓存值，不存在或已过期返回 false
func (c *LocalCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return "", false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.data, key)
		return "", false
	}
	return e.value, true
}

// GetAndDelete 原子地取出并删除缓存值，用于一次性令牌
func (c *LocalCache) GetAndDelete(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return "", false
	}
	delete(c.data, key)
	if time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

// Delete 删除缓存值
func (c *LocalCache) Delete(key string) {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
}

// Close 停止后台清理协程
func (c *LocalCache) Close() {
	close(c.stop)
}

func (c *LocalCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, e := range c.data {
				if now.After(e.expiresAt) {
					delete(c.data, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
