// Package session 保存各瀏覽器工作階段的 kitchen.State
package session

import (
	"context"
	"fmt"

	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

// ErrNotFound 工作階段不存在或已過期
var ErrNotFound = common.ErrSessionNotFound

// ErrConflict 寫入時發現工作階段已被其他請求更新
var ErrConflict = common.ErrSessionConflict

// Store 工作階段儲存介面
type Store interface {
	Get(ctx context.Context, id string) (*kitchen.State, error)
	Save(ctx context.Context, id string, state *kitchen.State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewStore 依設定選擇儲存後端
func NewStore(ctx context.Context, cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case config.SessionRedis:
		return NewRedisStore(ctx, cfg)
	case config.SessionMemory, "":
		return NewMemoryStore(cfg), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// Create 建立新的工作階段並儲存
func Create(ctx context.Context, store Store) (string, *kitchen.State, error) {
	id := common.GenerateUUID()
	state := kitchen.New()
	if err := store.Save(ctx, id, state); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}
	return id, state, nil
}
