package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// keyLimiter 按键（通常是客户端 IP）维度的限流器
//
// 每个键一个令牌桶，长时间不活跃的桶定期回收，避免 map 无界增长。
type keyLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucketEntry
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newKeyLimiter 创建按键限流器
func newKeyLimiter(limit rate.Limit, burst int) *keyLimiter {
	return &keyLimiter{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*bucketEntry),
	}
}

// Allow 检查该键是否允许通过
func (l *keyLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.buckets[key]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// Cleanup 回收闲置超过 maxIdle 的桶
func (l *keyLimiter) Cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for key, entry := range l.buckets {
		if entry.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// StartCleanup 启动定期回收协程，stop 关闭后退出
func (l *keyLimiter) StartCleanup(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.Cleanup(maxIdle)
			}
		}
	}()
}
