package recipe

import (
	"net/http"
	"strings"

	"recipe-finder/internal/core/voice"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterIngredientRequest 新增目錄食材
type RegisterIngredientRequest struct {
	Name string `json:"name" binding:"required"`
}

// CustomIngredientRequest 自訂食材輸入
type CustomIngredientRequest struct {
	Text string `json:"text"`
}

// BulkSelectRequest 一次選取多個食材
type BulkSelectRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// VoiceRequest 瀏覽器端完成的語音轉錄
type VoiceRequest struct {
	Transcript string `json:"transcript"`
}

// ListCatalog 列出目錄
func (h *Handler) ListCatalog(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": state.Catalog()})
}

// RegisterIngredient 新增自訂食材到目錄（不選取）
func (h *Handler) RegisterIngredient(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	var req RegisterIngredientRequest
	if !h.bind(c, &req) {
		return
	}

	ing, ok := state.RegisterIngredient(req.Name)
	if !ok {
		h.respondError(c, common.NewValidationError("ingredient name must not be blank"))
		return
	}
	c.JSON(http.StatusCreated, ing)
}

// RemoveIngredient 從目錄移除自訂食材
func (h *Handler) RemoveIngredient(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if !state.RemoveCustomIngredient(id) {
		h.respondError(c, common.ErrIngredientNotFound)
		return
	}
	c.JSON(http.StatusOK, state.Snapshot())
}

// Toggle 切換選取
func (h *Handler) Toggle(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, exists := state.Ingredient(id); !exists {
		h.respondError(c, common.ErrIngredientNotFound)
		return
	}
	state.Toggle(id)
	c.JSON(http.StatusOK, state.Snapshot())
}

// SubmitCustom 新增並選取自訂食材；空白輸入不做任何事
func (h *Handler) SubmitCustom(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	var req CustomIngredientRequest
	if !h.bind(c, &req) {
		return
	}

	state.SubmitCustom(req.Text)
	c.JSON(http.StatusOK, state.Snapshot())
}

// BulkSelect 聯集加入多個 ID
func (h *Handler) BulkSelect(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	var req BulkSelectRequest
	if !h.bind(c, &req) {
		return
	}

	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	state.SelectIDs(ids)
	c.JSON(http.StatusOK, state.Snapshot())
}

// Deselect 取消單一選取
func (h *Handler) Deselect(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}
	state.Remove(c.Param("id"))
	c.JSON(http.StatusOK, state.Snapshot())
}

// ClearSelection 清空選取
func (h *Handler) ClearSelection(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}
	state.Clear()
	c.JSON(http.StatusOK, state.Snapshot())
}

// Voice 套用語音轉錄。沒有內容時立即回報錯誤。
func (h *Handler) Voice(c *gin.Context) {
	state, ok := h.state(c)
	if !ok {
		return
	}

	var req VoiceRequest
	if !h.bind(c, &req) {
		return
	}

	transcript, err := voice.Static(req.Transcript).Transcribe(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	added := state.ApplyTranscript(transcript)
	common.LogInfo("語音輸入已套用",
		zap.String("transcript", transcript),
		zap.Strings("added", added),
	)

	c.JSON(http.StatusOK, gin.H{
		"transcript": transcript,
		"added":      added,
		"state":      state.Snapshot(),
	})
}
