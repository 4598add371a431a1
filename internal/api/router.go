package api

import (
	"fmt"
	"time"

	"recipe-finder/internal/api/handlers/health"
	recipeHandler "recipe-finder/internal/api/handlers/recipe"
	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/featured"
	"recipe-finder/internal/core/finder"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/core/session"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store session.Store) (*gin.Engine, error) {
	if cfg == nil || store == nil {
		return nil, fmt.Errorf("config and session store are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	origins := cfg.Server.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.HeaderSessionID},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", middleware.HeaderSessionID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.String("recipe_api", cfg.RecipeAPI.BaseURL),
		zap.String("detection_mode", cfg.Detection.Mode),
		zap.Int("min_results", cfg.Matcher.MinResults),
		zap.String("session_backend", cfg.Session.Backend),
	)

	// 初始化服務
	source := recipe.NewSource(cfg.RecipeAPI)
	matcher := recipe.NewMatcher(cfg.Matcher.MinResults)
	detector := detection.New(cfg.Detection, cfg.Image)
	finderSvc := finder.NewService(source, matcher, detector)

	var featuredClient *featured.Client
	if cfg.Featured.Enabled {
		featuredClient = featured.NewClient(cfg.Featured)
	}

	healthHandler := health.NewHandler(cfg, store)
	handler := recipeHandler.NewHandler(cfg, store, finderSvc, featuredClient)

	// 健康檢查路由
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.POST("/sessions", handler.CreateSession)
		api.GET("/featured", handler.Featured)

		kitchen := api.Group("")
		kitchen.Use(middleware.Session(store))
		{
			kitchen.GET("/state", handler.GetState)

			// 食材目錄
			kitchen.GET("/catalog", handler.ListCatalog)
			kitchen.POST("/catalog", handler.RegisterIngredient)
			kitchen.DELETE("/catalog/:id", handler.RemoveIngredient)

			// 選取
			kitchen.POST("/selection/toggle/:id", handler.Toggle)
			kitchen.POST("/selection/custom", handler.SubmitCustom)
			kitchen.POST("/selection/bulk", handler.BulkSelect)
			kitchen.DELETE("/selection/:id", handler.Deselect)
			kitchen.DELETE("/selection", handler.ClearSelection)

			// 語音與辨識
			kitchen.POST("/voice", handler.Voice)

			// 搜尋以 token 排序，最新的一次勝出，不做去重
			kitchen.POST("/search", handler.Search)
			kitchen.POST("/search/retry", handler.Retry)

			// 上傳照片與自然語言查詢，擋下重複送出
			remote := kitchen.Group("")
			remote.Use(middleware.Deduplication(cfg.DedupWindow))
			{
				remote.POST("/detect", handler.Detect)
				remote.POST("/search/query", handler.SearchQuery)
			}

			kitchen.GET("/results", handler.Results)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		_, resp := common.ToErrorResponse(common.ErrNotFound, false)
		c.JSON(common.ErrNotFound.Status, resp)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Bool("featured_enabled", cfg.Featured.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
