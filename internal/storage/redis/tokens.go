package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"campusfeedback/backend/internal/storage"
)

const tokenKeyPrefix = "pwreset:"

// SaveResetToken 保存密码重置令牌，超过 ttl 自动过期
func (c *Client) SaveResetToken(token, userID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return c.rdb.Set(ctx, tokenKeyPrefix+token, userID, ttl).Err()
}

// ConsumeResetToken 原子地取出并删除令牌（GETDEL），保证一次性使用
func (c *Client) ConsumeResetToken(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	userID, err := c.rdb.GetDel(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
