package session

import (
	"context"
	"sync"
	"time"

	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 行程內的工作階段儲存，具 TTL 與容量上限
type MemoryStore struct {
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	store map[string]entry
	stats storeStats

	stop     chan struct{}
	stopOnce sync.Once
}

// entry 工作階段條目
type entry struct {
	state       *kitchen.State
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 儲存統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建記憶體儲存
func NewMemoryStore(cfg config.SessionConfig) *MemoryStore {
	m := &MemoryStore{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		store:   make(map[string]entry),
		stop:    make(chan struct{}),
	}

	// 啟動清理過期工作階段的協程
	if cfg.CleanupInterval > 0 {
		go m.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("工作階段儲存已初始化",
		zap.String("backend", config.SessionMemory),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
		zap.Duration("清理間隔", cfg.CleanupInterval),
	)

	return m
}

// Get 取得工作階段並延長有效期限
func (m *MemoryStore) Get(ctx context.Context, id string) (*kitchen.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.store[id]
	if !ok {
		m.stats.misses++
		return nil, ErrNotFound
	}

	now := time.Now()
	if m.ttl > 0 && now.After(e.expiresAt) {
		delete(m.store, id)
		m.stats.evictions++
		m.stats.misses++
		common.LogDebug("工作階段已過期", zap.String("session_id", id))
		return nil, ErrNotFound
	}

	e.lastAccess = now
	e.accessCount++
	e.expiresAt = now.Add(m.ttl)
	m.store[id] = e
	m.stats.hits++

	return e.state, nil
}

// Save 儲存工作階段；容量已滿時先清理過期項目，再淘汰最少使用的項目
func (m *MemoryStore) Save(ctx context.Context, id string, state *kitchen.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if e, ok := m.store[id]; ok {
		e.state = state
		e.lastAccess = now
		e.expiresAt = now.Add(m.ttl)
		m.store[id] = e
		return nil
	}

	if m.maxSize > 0 && len(m.store) >= m.maxSize {
		evicted := m.cleanup(now)
		if evicted > 0 {
			common.LogInfo("工作階段清理執行", zap.Int("清理數量", evicted))
		}
		for len(m.store) >= m.maxSize {
			m.evictLRU()
		}
	}

	m.store[id] = entry{
		state:      state,
		expiresAt:  now.Add(m.ttl),
		createdAt:  now,
		lastAccess: now,
	}
	return nil
}

// Delete 刪除工作階段
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

// startCleanup 定期清理過期工作階段
func (m *MemoryStore) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup(time.Now())
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期的工作階段，呼叫端需持有鎖
func (m *MemoryStore) cleanup(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}

	count := 0
	for id, e := range m.store {
		if now.After(e.expiresAt) {
			delete(m.store, id)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}

	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的工作階段
func (m *MemoryStore) evictLRU() {
	var oldestID string
	var oldestAccess time.Time
	var lowestAccessCount int

	for id, e := range m.store {
		if oldestID == "" ||
			e.accessCount < lowestAccessCount ||
			(e.accessCount == lowestAccessCount && e.lastAccess.Before(oldestAccess)) {
			oldestID = id
			oldestAccess = e.lastAccess
			lowestAccessCount = e.accessCount
		}
	}

	if oldestID != "" {
		delete(m.store, oldestID)
		m.stats.evictions++
		common.LogInfo("工作階段已淘汰(LRU)", zap.String("session_id", oldestID))
	}
}

// Stats 取得儲存統計
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.maxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 停止清理並清空儲存
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]entry)
	common.LogInfo("工作階段儲存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}
