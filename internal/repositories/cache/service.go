// Package cache provides the redis-backed read cache for users and
// bills. Bill entries are always invalidated after balance or tariff
// mutations; the durable store stays the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"telebill/internal/models"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds a namespaced cache key like "bill:user:42".
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// User caching

func (s *CacheService) CacheUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	return s.Set(ctx, s.GenerateKey("user", "id", user.ID), user)
}

func (s *CacheService) GetUser(ctx context.Context, key string) (*models.User, error) {
	var user models.User
	found, err := s.Get(ctx, key, &user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("user not found in cache")
	}
	return &user, nil
}

func (s *CacheService) InvalidateUser(ctx context.Context, user *models.User) error {
	return s.Delete(ctx,
		s.GenerateKey("user", "id", user.ID),
		s.GenerateKey("bill", "user", user.ID),
	)
}

// Bill caching

func (s *CacheService) CacheBill(ctx context.Context, bill *models.Bill) error {
	if bill == nil {
		return errors.New("cannot cache nil bill")
	}
	return s.Set(ctx, s.GenerateKey("bill", "user", bill.UserID), bill)
}

func (s *CacheService) GetBill(ctx context.Context, userID uint) (*models.Bill, error) {
	var bill models.Bill
	found, err := s.Get(ctx, s.GenerateKey("bill", "user", userID), &bill)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("bill not found in cache")
	}
	return &bill, nil
}

func (s *CacheService) InvalidateBill(ctx context.Context, userID uint) error {
	return s.Delete(ctx, s.GenerateKey("bill", "user", userID))
}

// FlushAll clears the whole cache. Used on startup.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close releases the underlying redis connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
