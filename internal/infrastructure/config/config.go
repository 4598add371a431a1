package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	RecipeAPI   RecipeAPIConfig `mapstructure:"recipe_api"`
	Detection   DetectionConfig `mapstructure:"detection"`
	Featured    FeaturedConfig  `mapstructure:"featured"`
	Matcher     MatcherConfig   `mapstructure:"matcher"`
	Session     SessionConfig   `mapstructure:"session"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// RecipeAPIConfig 外部食譜 API 設定
type RecipeAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DetectionConfig 食材辨識設定
type DetectionConfig struct {
	Mode    string        `mapstructure:"mode"` // remote | simulated
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FeaturedConfig 節慶推薦食譜設定
type FeaturedConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatcherConfig 食譜比對設定
type MatcherConfig struct {
	MinResults int `mapstructure:"min_results"`
}

// SessionConfig 工作階段設定
type SessionConfig struct {
	Backend         string        `mapstructure:"backend"` // memory | redis
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	MaxDimension uint  `mapstructure:"max_dimension"`
}

// 辨識模式
const (
	DetectionRemote    = "remote"
	DetectionSimulated = "simulated"
)

// 工作階段後端
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時僅使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("server.port", "APP_SERVER_PORT", "PORT")
	_ = v.BindEnv("recipe_api.base_url", "APP_RECIPE_API_BASE_URL", "RECIPE_API_BASE_URL")
	_ = v.BindEnv("recipe_api.timeout", "APP_RECIPE_API_TIMEOUT", "RECIPE_API_TIMEOUT")
	_ = v.BindEnv("detection.mode", "APP_DETECTION_MODE", "DETECTION_MODE")
	_ = v.BindEnv("detection.base_url", "APP_DETECTION_BASE_URL", "DETECTION_BASE_URL")
	_ = v.BindEnv("featured.enabled", "APP_FEATURED_ENABLED", "FEATURED_ENABLED")
	_ = v.BindEnv("featured.url", "APP_FEATURED_URL", "FEATURED_API_URL")
	_ = v.BindEnv("matcher.min_results", "APP_MATCHER_MIN_RESULTS", "MATCHER_MIN_RESULTS")
	_ = v.BindEnv("session.backend", "APP_SESSION_BACKEND", "SESSION_BACKEND")
	_ = v.BindEnv("session.redis_addr", "APP_SESSION_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("session.redis_password", "APP_SESSION_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "APP_RATE_LIMIT_ENABLED", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "APP_RATE_LIMIT_REQUESTS", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "APP_RATE_LIMIT_WINDOW", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "APP_DEDUP_WINDOW", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "APP_LOG_LEVEL", "LOG_LEVEL")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 去除結尾斜線，避免組出 //find_recipe
	config.RecipeAPI.BaseURL = strings.TrimRight(config.RecipeAPI.BaseURL, "/")
	config.Detection.BaseURL = strings.TrimRight(config.Detection.BaseURL, "/")
	config.Detection.Mode = strings.ToLower(strings.TrimSpace(config.Detection.Mode))
	config.Session.Backend = strings.ToLower(strings.TrimSpace(config.Session.Backend))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-finder")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.max_body_bytes", 12<<20)
	v.SetDefault("server.allow_origins", []string{"*"})

	// 外部食譜 API
	v.SetDefault("recipe_api.base_url", "http://localhost:8000")
	v.SetDefault("recipe_api.timeout", "30s")

	// 食材辨識
	v.SetDefault("detection.mode", DetectionRemote)
	v.SetDefault("detection.base_url", "http://localhost:8000")
	v.SetDefault("detection.timeout", "30s")

	// 節慶推薦
	v.SetDefault("featured.enabled", true)
	v.SetDefault("featured.url", "http://localhost:8000/festival_recipes")
	v.SetDefault("featured.timeout", "15s")

	// 比對設定
	v.SetDefault("matcher.min_results", 4)

	// 工作階段
	v.SetDefault("session.backend", SessionMemory)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.max_size", 10000)
	v.SetDefault("session.cleanup_interval", "10m")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("image.max_dimension", 1024)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if config.RecipeAPI.BaseURL == "" {
		return fmt.Errorf("recipe api base url is required")
	}

	switch config.Detection.Mode {
	case DetectionSimulated:
	case DetectionRemote:
		if config.Detection.BaseURL == "" {
			return fmt.Errorf("detection base url is required in remote mode")
		}
	default:
		return fmt.Errorf("unknown detection mode %q", config.Detection.Mode)
	}

	if config.Matcher.MinResults < 0 {
		return fmt.Errorf("invalid matcher min results")
	}

	switch config.Session.Backend {
	case SessionMemory:
		if config.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case SessionRedis:
		if config.Session.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis sessions")
		}
	default:
		return fmt.Errorf("unknown session backend %q", config.Session.Backend)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
