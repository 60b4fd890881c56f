package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
// アプリケーション設定を保持
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	API       APIConfig       `yaml:"api"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// StorageConfig selects and configures the item store
// 商品ストア設定を保持
type StorageConfig struct {
	Driver     string `yaml:"driver"` // memory, postgres, sqlite
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
	Seed       bool   `yaml:"seed"` // 空のストアにデモデータを投入
}

// RedisConfig holds the read cache configuration
// Redisキャッシュ設定を保持
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// APIConfig holds API server configuration
// APIサーバー設定を保持
type APIConfig struct {
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	EnableCORS    bool          `yaml:"enable_cors"`
	EnableMetrics bool          `yaml:"enable_metrics"`
	RateLimit     float64       `yaml:"rate_limit"` // 1秒あたりのリクエスト数（0で無制限）
	RateBurst     int           `yaml:"rate_burst"`
}

// DashboardConfig holds view-model settings
// ダッシュボード固有の設定を保持
type DashboardConfig struct {
	PendingInbound    int64 `yaml:"pending_inbound"`
	AlertPreviewLimit int   `yaml:"alert_preview_limit"`
	DefaultPageSize   int   `yaml:"default_page_size"`
}

// LoggingConfig holds logging configuration
// ログ設定を保持
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, ファイルパス
}

// Default returns the built-in configuration
// 既定の設定を返す
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     "memory",
			Host:       "localhost",
			Port:       5432,
			User:       "inventory",
			Password:   "password",
			DBName:     "inventory_db",
			SSLMode:    "disable",
			SQLitePath: "zaistockview.db",
			Seed:       true,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     30 * time.Second,
			Prefix:  "zaistockview",
		},
		API: APIConfig{
			Port:          8080,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  30 * time.Second,
			IdleTimeout:   60 * time.Second,
			EnableCORS:    true,
			EnableMetrics: true,
			RateLimit:     50,
			RateBurst:     100,
		},
		Dashboard: DashboardConfig{
			PendingInbound:    5,
			AlertPreviewLimit: 6,
			DefaultPageSize:   10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_FILE (if any) and environment variables, in that order
// 既定値・設定ファイル・環境変数の順に設定を読み込み
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	// バリデーション
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定バリデーションに失敗しました: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイル読み込みに失敗しました %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイル解析に失敗しました %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Host = getEnv("DB_HOST", c.Storage.Host)
	c.Storage.Port = getEnvAsInt("DB_PORT", c.Storage.Port)
	c.Storage.User = getEnv("DB_USER", c.Storage.User)
	c.Storage.Password = getEnv("DB_PASSWORD", c.Storage.Password)
	c.Storage.DBName = getEnv("DB_NAME", c.Storage.DBName)
	c.Storage.SSLMode = getEnv("DB_SSLMODE", c.Storage.SSLMode)
	c.Storage.SQLitePath = getEnv("SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.Seed = getEnvAsBool("STORAGE_SEED", c.Storage.Seed)

	c.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.TTL = getEnvAsDuration("REDIS_TTL", c.Redis.TTL)
	c.Redis.Prefix = getEnv("REDIS_PREFIX", c.Redis.Prefix)

	c.API.Port = getEnvAsInt("API_PORT", c.API.Port)
	c.API.ReadTimeout = getEnvAsDuration("API_READ_TIMEOUT", c.API.ReadTimeout)
	c.API.WriteTimeout = getEnvAsDuration("API_WRITE_TIMEOUT", c.API.WriteTimeout)
	c.API.IdleTimeout = getEnvAsDuration("API_IDLE_TIMEOUT", c.API.IdleTimeout)
	c.API.EnableCORS = getEnvAsBool("API_ENABLE_CORS", c.API.EnableCORS)
	c.API.EnableMetrics = getEnvAsBool("API_ENABLE_METRICS", c.API.EnableMetrics)
	c.API.RateLimit = getEnvAsFloat("API_RATE_LIMIT", c.API.RateLimit)
	c.API.RateBurst = getEnvAsInt("API_RATE_BURST", c.API.RateBurst)

	c.Dashboard.PendingInbound = getEnvAsInt64("DASHBOARD_PENDING_INBOUND", c.Dashboard.PendingInbound)
	c.Dashboard.AlertPreviewLimit = getEnvAsInt("DASHBOARD_ALERT_PREVIEW_LIMIT", c.Dashboard.AlertPreviewLimit)
	c.Dashboard.DefaultPageSize = getEnvAsInt("DASHBOARD_DEFAULT_PAGE_SIZE", c.Dashboard.DefaultPageSize)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)
}

// Validate validates the configuration
// 設定をバリデーション
func (c *Config) Validate() error {
	// ストア設定チェック
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.Host == "" {
			return fmt.Errorf("データベースホストが指定されていません")
		}
		if c.Storage.Port <= 0 || c.Storage.Port > 65535 {
			return fmt.Errorf("無効なデータベースポート: %d", c.Storage.Port)
		}
		if c.Storage.User == "" {
			return fmt.Errorf("データベースユーザーが指定されていません")
		}
		if c.Storage.DBName == "" {
			return fmt.Errorf("データベース名が指定されていません")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLiteファイルパスが指定されていません")
		}
	default:
		return fmt.Errorf("無効なストアドライバー: %s", c.Storage.Driver)
	}

	// Redis設定チェック
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("Redisアドレスが指定されていません")
	}

	// API設定チェック
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("無効なAPIポート: %d", c.API.Port)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("レート制限は0以上である必要があります")
	}
	if c.API.RateLimit > 0 && c.API.RateBurst <= 0 {
		return fmt.Errorf("バースト数は1以上である必要があります")
	}

	// ダッシュボード設定チェック
	if c.Dashboard.PendingInbound < 0 {
		return fmt.Errorf("入庫待ち数は0以上である必要があります")
	}
	if c.Dashboard.AlertPreviewLimit < 0 {
		return fmt.Errorf("アラート表示件数は0以上である必要があります")
	}
	if !slices.Contains([]int{10, 20, 30, 40, 50}, c.Dashboard.DefaultPageSize) {
		return fmt.Errorf("無効なページサイズ: %d", c.Dashboard.DefaultPageSize)
	}

	// ログ設定チェック
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("無効なログレベル: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true, "console": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("無効なログフォーマット: %s", c.Logging.Format)
	}

	return nil
}

// DSN generates PostgreSQL Data Source Name
// PostgreSQLデータソース名を生成
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.User,
		c.Storage.Password,
		c.Storage.DBName,
		c.Storage.SSLMode,
	)
}

// ヘルパー関数

// getEnv gets environment variable with default value
// デフォルト値付きで環境変数を取得
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets environment variable as integer with default value
// デフォルト値付きで環境変数を整数として取得
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsInt64 gets environment variable as int64 with default value
// デフォルト値付きで環境変数をint64として取得
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
	}
	return defaultValue
}

// getEnvAsFloat gets environment variable as float64 with default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool gets environment variable as boolean with default value
// デフォルト値付きで環境変数をbooleanとして取得
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration gets environment variable as duration with default value
// デフォルト値付きで環境変数をdurationとして取得
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
