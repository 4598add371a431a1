package middleware

import (
	"fmt"
	"sync"
	"time"

	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewRateLimiter 創建新的限流器
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	// 依經過時間補充令牌，小數部分保留到下次
	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}

	return false
}

// idle 距上次請求的時間
func (rl *RateLimiter) idle(now time.Time) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return now.Sub(rl.lastTime)
}

// ipLimiters 每個用戶端 IP 一個令牌桶，閒置超過時間窗的桶會被回收
type ipLimiters struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	limiters map[string]*RateLimiter
	lastGC   time.Time
}

func newIPLimiters(requests int, window time.Duration) *ipLimiters {
	return &ipLimiters{
		requests: requests,
		window:   window,
		limiters: make(map[string]*RateLimiter),
		lastGC:   time.Now(),
	}
}

// get 取得 IP 的令牌桶，順帶清理閒置的桶。
// 閒置超過時間窗的桶必已補滿，刪除後重建結果相同。
func (l *ipLimiters) get(ip string, now time.Time) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.window {
		for k, rl := range l.limiters {
			if rl.idle(now) > l.window {
				delete(l.limiters, k)
			}
		}
		l.lastGC = now
	}

	rl, ok := l.limiters[ip]
	if !ok {
		rl = NewRateLimiter(l.requests, l.window)
		l.limiters[ip] = rl
	}
	return rl
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimit 限流中間件，每個用戶端 IP 各自一個令牌桶
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiters := newIPLimiters(requests, window)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			_, resp := common.ToErrorResponse(common.ErrTooManyRequests, false)
			c.AbortWithStatusJSON(common.ErrTooManyRequests.Status, resp)
			return
		}

		c.Next()
	}
}
