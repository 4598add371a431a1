package recipe

import (
	"errors"
	"io"
	"net/http"
	"time"

	"recipe-finder/internal/core/featured"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueryRequest 自然語言查詢
type QueryRequest struct {
	Query string `json:"query"`
}

// Search 以選取的食材搜尋。抓取失敗仍回 200，錯誤訊息放在狀態的 error 欄位。
func (h *Handler) Search(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	snap, err := h.finder.Search(c.Request.Context(), state)
	if err != nil {
		h.respondError(c, err)
		return
	}

	common.LogInfo("食譜搜尋完成",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("results", len(snap.Results)),
		zap.Bool("failed", snap.Error != ""),
	)
	c.JSON(http.StatusOK, snap)
}

// SearchQuery 自然語言搜尋
func (h *Handler) SearchQuery(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	var req QueryRequest
	if !h.bind(c, &req) {
		return
	}

	snap, err := h.finder.SearchQuery(c.Request.Context(), state, req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Retry 重新執行最近一次搜尋
func (h *Handler) Retry(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	snap, err := h.finder.Retry(c.Request.Context(), state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Results 最近一次搜尋的結果
func (h *Handler) Results(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	snap := state.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"results":     snap.Results,
		"error":       snap.Error,
		"loading":     snap.Loading,
		"last_search": snap.LastSearch,
	})
}

// Detect 上傳照片辨識食材（multipart 欄位 file）
func (h *Handler) Detect(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondError(c, common.ErrInvalidImageFormat.Wrap(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, common.ErrInvalidImageFormat.Wrap(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	common.LogImageProcessing("info",
		zap.String("request_id", requestid.Get(c)),
		zap.String("filename", fileHeader.Filename),
		zap.Int("bytes", len(data)),
	)

	items, err := h.finder.Detect(c.Request.Context(), state, data)
	if err != nil && !isRemoteFailure(err) {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"detected": items,
		"state":    state.Snapshot(),
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Featured 當月節慶食譜；取得失敗時回傳內建清單與錯誤訊息
func (h *Handler) Featured(c *gin.Context) {
	if !h.cfg.Featured.Enabled || h.featured == nil {
		c.JSON(http.StatusOK, gin.H{"festivals": featured.Fallback()})
		return
	}

	festivals, err := h.featured.Festivals(c.Request.Context(), time.Now())
	resp := gin.H{"festivals": festivals}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// isRemoteFailure 外部服務失敗以狀態回報，不視為 HTTP 錯誤
func isRemoteFailure(err error) bool {
	return errors.Is(err, common.ErrDetectionService)
}
