package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dinetrack-http-service/internal/domain/models"
	"dinetrack-http-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// 用户列表缓存的键和有效期
const (
	userListKeyPrefix = "user_list:"
	userListTTL       = time.Minute
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(key string) error
	CacheUserPage(page, pageSize int, search string, users []models.User, total int64) error
	GetUserPage(page, pageSize int, search string) ([]models.User, int64, bool)
	InvalidateUserPages() error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// 缓存的用户列表页
type cachedUserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.GetRedisAddr(),
		DB:   cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// 4 CacheUserPage 缓存一页用户列表
func (s *RedisService) CacheUserPage(page, pageSize int, search string, users []models.User, total int64) error {
	key := userPageKey(page, pageSize, search)
	return s.Set(key, cachedUserPage{Users: users, Total: total}, userListTTL)
}

// 5 GetUserPage 读取缓存的用户列表页，未命中或Redis不可用时返回false
func (s *RedisService) GetUserPage(page, pageSize int, search string) ([]models.User, int64, bool) {
	var cached cachedUserPage
	if err := s.Get(userPageKey(page, pageSize, search), &cached); err != nil {
		return nil, 0, false
	}
	return cached.Users, cached.Total, true
}

// 6 InvalidateUserPages 用户数据变更后清空所有列表页缓存
func (s *RedisService) InvalidateUserPages() error {
	iter := s.Client.Scan(s.Ctx, 0, userListKeyPrefix+"*", 0).Iterator()
	for iter.Next(s.Ctx) {
		if err := s.Client.Del(s.Ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func userPageKey(page, pageSize int, search string) string {
	return fmt.Sprintf("%s%d:%d:%s", userListKeyPrefix, page, pageSize, search)
}
