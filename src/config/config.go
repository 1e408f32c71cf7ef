package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config アプリケーション設定
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	S3       S3Config       `yaml:"s3"`
	Registry RegistryConfig `yaml:"registry"`
}

// ServerConfig サーバー設定
type ServerConfig struct {
	Port         string   `yaml:"port"`
	Mode         string   `yaml:"mode"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// LogConfig ログ設定
type LogConfig struct {
	Level          string        `yaml:"level"`
	Directory      string        `yaml:"directory"`
	UploadEnabled  bool          `yaml:"upload_enabled"`
	UploadMaxAge   time.Duration `yaml:"upload_max_age"`
	UploadInterval time.Duration `yaml:"upload_interval"`
}

// StorageConfig 永続化バックエンド設定
type StorageConfig struct {
	Driver     string         `yaml:"driver"` // memory, file, sqlite, postgres, redis, s3
	Directory  string         `yaml:"directory"`
	SQLitePath string         `yaml:"sqlite_path"`
	KeyPrefix  string         `yaml:"key_prefix"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Redis      RedisConfig    `yaml:"redis"`
}

// PostgresConfig PostgreSQL接続設定
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig Redis接続設定
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// S3Config S3設定
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	UseSSL          bool   `yaml:"use_ssl"`
}

// RegistryConfig 台帳の動作設定
type RegistryConfig struct {
	PageSize           int   `yaml:"page_size"`
	MaxAttachmentBytes int64 `yaml:"max_attachment_bytes"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Mode:         "release",
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level:          "info",
			Directory:      "logs",
			UploadEnabled:  false,
			UploadMaxAge:   24 * time.Hour,
			UploadInterval: 1 * time.Hour,
		},
		Storage: StorageConfig{
			Driver:     "file",
			Directory:  "data",
			SQLitePath: "data/memo-registry.db",
			KeyPrefix:  "memo-registry/",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				User:    "postgres",
				DBName:  "memo_registry",
				SSLMode: "disable",
			},
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		S3: S3Config{
			Endpoint:        "http://localhost:9000", // MinIO用のデフォルト
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			Region:          "us-east-1",
			Bucket:          "memo-registry",
			UseSSL:          false,
		},
		Registry: RegistryConfig{
			PageSize:           10,
			MaxAttachmentBytes: 5 << 20,
		},
	}
}

// LoadConfig 環境変数から設定を読み込み
// CONFIG_FILE が指定されている場合は YAML を先に適用し、環境変数で上書きする
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.Mode = getEnv("SERVER_MODE", c.Server.Mode)
	c.Server.AllowOrigins = getListEnv("CORS_ALLOW_ORIGINS", c.Server.AllowOrigins)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Directory = getEnv("LOG_DIRECTORY", c.Log.Directory)
	c.Log.UploadEnabled = getBoolEnv("LOG_UPLOAD_ENABLED", c.Log.UploadEnabled)
	c.Log.UploadMaxAge = getDurationEnv("LOG_UPLOAD_MAX_AGE", c.Log.UploadMaxAge)
	c.Log.UploadInterval = getDurationEnv("LOG_UPLOAD_INTERVAL", c.Log.UploadInterval)

	c.Storage.Driver = getEnv("STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Directory = getEnv("STORAGE_DIRECTORY", c.Storage.Directory)
	c.Storage.SQLitePath = getEnv("STORAGE_SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.KeyPrefix = getEnv("STORAGE_KEY_PREFIX", c.Storage.KeyPrefix)
	c.Storage.Postgres.Host = getEnv("DB_HOST", c.Storage.Postgres.Host)
	c.Storage.Postgres.Port = getIntEnv("DB_PORT", c.Storage.Postgres.Port)
	c.Storage.Postgres.User = getEnv("DB_USER", c.Storage.Postgres.User)
	c.Storage.Postgres.Password = getEnv("DB_PASSWORD", c.Storage.Postgres.Password)
	c.Storage.Postgres.DBName = getEnv("DB_NAME", c.Storage.Postgres.DBName)
	c.Storage.Postgres.SSLMode = getEnv("DB_SSLMODE", c.Storage.Postgres.SSLMode)
	c.Storage.Redis.Addr = getEnv("REDIS_ADDR", c.Storage.Redis.Addr)
	c.Storage.Redis.Password = getEnv("REDIS_PASSWORD", c.Storage.Redis.Password)
	c.Storage.Redis.DB = getIntEnv("REDIS_DB", c.Storage.Redis.DB)

	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.S3.AccessKeyID)
	c.S3.SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.S3.SecretAccessKey)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.UseSSL = getBoolEnv("S3_USE_SSL", c.S3.UseSSL)

	c.Registry.PageSize = getIntEnv("REGISTRY_PAGE_SIZE", c.Registry.PageSize)
	c.Registry.MaxAttachmentBytes = int64(getIntEnv("REGISTRY_MAX_ATTACHMENT_BYTES", int(c.Registry.MaxAttachmentBytes)))
}

// getEnv 環境変数を取得（デフォルト値付き）
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv 環境変数をboolで取得
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnv 環境変数をintで取得
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv 環境変数をtime.Durationで取得
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getListEnv カンマ区切りの環境変数を取得
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
