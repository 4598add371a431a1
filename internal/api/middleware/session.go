package middleware

import (
	"errors"
	"strings"

	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/core/session"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderSessionID 工作階段 ID 標頭
	HeaderSessionID = "X-Session-ID"

	ContextKeySessionID = "session_id"
	ContextKeyState     = "kitchen_state"
)

// Session 載入工作階段狀態；沒有或已過期時建立新的，並於回應標頭帶回 ID。
// 請求結束後寫回儲存。
func Session(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := strings.TrimSpace(c.GetHeader(HeaderSessionID))

		var state *kitchen.State
		if id != "" && !common.IsUUID(id) {
			common.LogDebug("Ignoring malformed session id", zap.String("session_id", common.Truncate(id, 64)))
		} else if id != "" {
			s, err := store.Get(ctx, id)
			switch {
			case err == nil:
				state = s
			case errors.Is(err, session.ErrNotFound):
				common.LogDebug("Session not found, creating a new one", zap.String("session_id", id))
			default:
				common.LogError("Failed to load session", zap.String("session_id", id), zap.Error(err))
				_, resp := common.ToErrorResponse(common.ErrServiceUnavailable, false)
				c.AbortWithStatusJSON(common.ErrServiceUnavailable.Status, resp)
				return
			}
		}

		if state == nil {
			newID, s, err := session.Create(ctx, store)
			if err != nil {
				common.LogError("Failed to create session", zap.Error(err))
				_, resp := common.ToErrorResponse(common.ErrServiceUnavailable, false)
				c.AbortWithStatusJSON(common.ErrServiceUnavailable.Status, resp)
				return
			}
			id, state = newID, s
		}

		c.Set(ContextKeySessionID, id)
		c.Set(ContextKeyState, state)
		c.Header(HeaderSessionID, id)

		c.Next()

		// 只有變更過目錄或選取的請求會寫回；與其他請求衝突時放棄本次寫入
		if err := store.Save(ctx, id, state); err != nil {
			if errors.Is(err, session.ErrConflict) {
				common.LogWarn("Session changed by a concurrent request, update dropped",
					zap.String("session_id", id),
					zap.String("path", c.Request.URL.Path),
				)
				return
			}
			common.LogError("Failed to save session", zap.String("session_id", id), zap.Error(err))
		}
	}
}

// State 取得目前請求的工作階段狀態
func State(c *gin.Context) *kitchen.State {
	v, ok := c.Get(ContextKeyState)
	if !ok {
		return nil
	}
	state, _ := v.(*kitchen.State)
	return state
}
