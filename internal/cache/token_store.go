package cache

import (
	"time"

	"campusfeedback/backend/internal/storage"
)

// TokenStore 基于本地缓存的重置令牌存储，实现 storage.ResetTokenStore
type TokenStore struct {
	cache *LocalCache
}

// NewTokenStore 创建本地令牌存储
func NewTokenStore(defaultTTL time.Duration) *TokenStore {
	return &TokenStore{cache: NewLocalCache(defaultTTL)}
}

// SaveResetToken 保存令牌与用户的关联
func (s *TokenStore) SaveResetToken(token, userID string, ttl time.Duration) error {
	s.cache.Set(token, userID, ttl)
	return nil
}

// ConsumeResetToken 取出令牌对应的用户并使令牌失效
func (s *TokenStore) ConsumeResetToken(token string) (string, error) {
	userID, ok := s.cache.GetAndDelete(token)
	if !ok {
		return "", storage.ErrTokenNotFound
	}
	return userID, nil
}

// Close 释放缓存资源
func (s *TokenStore) Close() {
	s.cache.Close()
}
