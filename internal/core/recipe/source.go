package recipe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	findRecipePath        = "/find_recipe"
	findRecipeByQueryPath = "/find_recipe_by_query"
)

// Result 一次搜尋的結果。失敗時 Recipes 為空且 Err 保留錯誤訊息。
type Result struct {
	Recipes []Recipe
	Shape   Shape
	Err     error
}

// Failed 是否失敗
func (r Result) Failed() bool {
	return r.Err != nil
}

// Finder 食譜來源介面
type Finder interface {
	FindByIngredients(ctx context.Context, ids []string) Result
	FindByFreeTextQuery(ctx context.Context, query string) Result
}

// Source 外部食譜 API 的轉接器，不保留任何快取
type Source struct {
	client *resty.Client
}

// NewSource 創建食譜來源
func NewSource(cfg config.RecipeAPIConfig) *Source {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Source{client: client}
}

// FindByIngredients 以食材 ID 查詢食譜
func (s *Source) FindByIngredients(ctx context.Context, ids []string) Result {
	return s.fetch(ctx, findRecipePath+"?"+EncodeQuery("ingredients", ids...))
}

// FindByFreeTextQuery 以自然語言查詢食譜
func (s *Source) FindByFreeTextQuery(ctx context.Context, query string) Result {
	return s.fetch(ctx, findRecipeByQueryPath+"?"+EncodeQuery("query", query))
}

func (s *Source) fetch(ctx context.Context, path string) (result Result) {
	start := time.Now()
	defer func() {
		// 任何非預期的 panic 也轉為錯誤結果
		if r := recover(); r != nil {
			result = Result{Recipes: []Recipe{}, Err: common.ErrRecipeService.Wrap(fmt.Errorf("panic: %v", r))}
		}
		common.LogRemoteCall("recipe_api", time.Since(start), result.Err,
			zap.String("path", path),
			zap.Int("recipes", len(result.Recipes)),
			zap.String("shape", result.Shape.String()),
		)
	}()

	resp, err := s.client.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return failed(fmt.Errorf("failed to send request: %w", err))
	}

	if !resp.IsSuccess() {
		return failed(fmt.Errorf("HTTP error! status: %d", resp.StatusCode()))
	}

	env, err := ParseEnvelope(resp.Body())
	if err != nil {
		common.LogWarn("Unexpected recipe response body",
			zap.String("body", common.Truncate(resp.String(), 200)),
		)
		return failed(err)
	}
	if env.Shape == ShapeUnknown {
		common.LogWarn("Unexpected API response structure",
			zap.String("body", common.Truncate(resp.String(), 200)),
		)
	}

	return Result{Recipes: env.Recipes(), Shape: env.Shape}
}

func failed(err error) Result {
	return Result{Recipes: []Recipe{}, Err: common.ErrRecipeService.Wrap(err)}
}

// EncodeQuery 依序組出 key=v1&key=v2，每個值以百分比編碼
func EncodeQuery(key string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, key+"="+encodeComponent(v))
	}
	return strings.Join(parts, "&")
}

func encodeComponent(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
