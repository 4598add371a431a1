package recipe

import (
	"net/http"

	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/featured"
	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/core/kitchen"
	"recipe-finder/internal/core/session"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食材選取與食譜搜尋的 HTTP 處理器
type Handler struct {
	cfg      *config.Config
	store    session.Store
	finder   *finder.Service
	featured *featured.Client
}

// NewHandler 創建處理器
func NewHandler(cfg *config.Config, store session.Store, finderSvc *finder.Service, featuredClient *featured.Client) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    store,
		finder:   finderSvc,
		featured: featuredClient,
	}
}

// state 取得工作階段狀態；Session 中間件未執行時回應 500
func (h *Handler) state(c *gin.Context) (*kitchen.State, bool) {
	state := middleware.State(c)
	if state == nil {
		common.LogError("Session state not found in context",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
		)
		h.respondError(c, common.ErrInternalError)
		return nil, false
	}
	return state, true
}

// respondError 以統一格式回應錯誤
func (h *Handler) respondError(c *gin.Context, err error) {
	status, resp := common.ToErrorResponse(err, h.cfg.App.Debug)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// bind 解析 JSON 請求
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		common.LogWarn("請求格式無效",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}

// CreateSession 建立新的工作階段
func (h *Handler) CreateSession(c *gin.Context) {
	id, state, err := session.Create(c.Request.Context(), h.store)
	if err != nil {
		common.LogError("Failed to create session", zap.Error(err))
		h.respondError(c, common.ErrServiceUnavailable.Wrap(err))
		return
	}

	c.Header(middleware.HeaderSessionID, id)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": id,
		"state":      state.Snapshot(),
	})
}

// GetState 取得完整狀態
func (h *Handler) GetState(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, state.Snapshot())
}
