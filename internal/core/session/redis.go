package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "recipe-finder:session:"

// RedisStore 以 Redis 保存目錄與選取與其版本；搜尋結果不保存
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 連線 Redis 並創建儲存
func NewRedisStore(ctx context.Context, cfg config.SessionConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("工作階段儲存已初始化",
		zap.String("backend", config.SessionRedis),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("存活時間", cfg.TTL),
	)

	return NewRedisStoreWithClient(client, cfg.TTL), nil
}

// NewRedisStoreWithClient 使用既有的客戶端
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 讀取工作階段並延長有效期限
func (s *RedisStore) Get(ctx context.Context, id string) (*kitchen.State, error) {
	key := s.key(id)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var p kitchen.Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			common.LogWarn("Failed to refresh session ttl", zap.String("session_id", id), zap.Error(err))
		}
	}

	return kitchen.Restore(p), nil
}

// Save 寫入目錄與選取。沒有變更時不寫入；
// 以 WATCH 檢查儲存中的版本仍是載入時的版本，否則回傳 ErrConflict 且不覆寫。
func (s *RedisStore) Save(ctx context.Context, id string, state *kitchen.State) error {
	if !state.Dirty() {
		return nil
	}

	key := s.key(id)
	p := state.Persist()
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// 新建或已過期的工作階段，直接寫入
		case err != nil:
			return fmt.Errorf("failed to get session: %w", err)
		default:
			var current kitchen.Persisted
			if err := json.Unmarshal(stored, &current); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			if current.Version != state.Base() {
				return ErrConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		state.MarkSaved(p.Version)
		return nil
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, ErrConflict):
		return ErrConflict
	default:
		return fmt.Errorf("failed to set session: %w", err)
	}
}

// Delete 刪除工作階段
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return keyPrefix + id
}
