package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"memo-registry/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "data", cfg.Storage.Directory)
	assert.Equal(t, 10, cfg.Registry.PageSize)
	assert.Equal(t, int64(5<<20), cfg.Registry.MaxAttachmentBytes)
	assert.False(t, cfg.Log.UploadEnabled)
	assert.Equal(t, time.Hour, cfg.Log.UploadInterval)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_UPLOAD_ENABLED", "true")
	t.Setenv("LOG_UPLOAD_INTERVAL", "30m")
	t.Setenv("REGISTRY_PAGE_SIZE", "25")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 15432, cfg.Storage.Postgres.Port)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.True(t, cfg.Log.UploadEnabled)
	assert.Equal(t, 30*time.Minute, cfg.Log.UploadInterval)
	assert.Equal(t, 25, cfg.Registry.PageSize)
}

func TestLoadConfig_InvalidEnvKeepsDefault(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("LOG_UPLOAD_ENABLED", "maybe")
	t.Setenv("LOG_UPLOAD_MAX_AGE", "forever")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
	assert.False(t, cfg.Log.UploadEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Log.UploadMaxAge)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "7070"
  allow_origins: ["https://school.example"]
log:
  level: debug
  upload_interval: 2h
storage:
  driver: redis
  key_prefix: "school/"
  redis:
    addr: "redis:6379"
registry:
  page_size: 20
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("CONFIG_FILE", path)
	// 環境変数はファイルより優先
	t.Setenv("SERVER_PORT", "6060")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "6060", cfg.Server.Port)
	assert.Equal(t, []string{"https://school.example"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.Log.UploadInterval)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "school/", cfg.Storage.KeyPrefix)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 20, cfg.Registry.PageSize)
	// ファイルにない項目はデフォルトのまま
	assert.Equal(t, "data", cfg.Storage.Directory)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	t.Run("存在しないファイル", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})

	t.Run("不正なYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
		t.Setenv("CONFIG_FILE", path)
		_, err := config.LoadConfig()
		assert.Error(t, err)
	})
}
