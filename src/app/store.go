package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"memo-registry/src/config"
	"memo-registry/src/database"
	"memo-registry/src/storage"

	"github.com/sirupsen/logrus"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// OpenStore opens the slot store selected by cfg.Storage.Driver
func OpenStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Store, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))

	logger.WithField("driver", driver).Info("ストレージを初期化しています")

	switch driver {
	case DriverMemory:
		return storage.NewMemoryStore(), nil
	case DriverFile, "":
		return opened(storage.NewFileStore(sc.Directory, logger))
	case DriverSQLite:
		return opened(storage.NewSQLiteStore(ctx, filepath.Clean(sc.SQLitePath), logger))
	case DriverPostgres:
		return opened(database.NewDB(ctx, &database.Config{
			Host:     sc.Postgres.Host,
			Port:     sc.Postgres.Port,
			User:     sc.Postgres.User,
			Password: sc.Postgres.Password,
			DBName:   sc.Postgres.DBName,
			SSLMode:  sc.Postgres.SSLMode,
		}, logger))
	case DriverRedis:
		return opened(storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
			Prefix:   sc.KeyPrefix,
		}, logger))
	case DriverS3:
		return opened(storage.NewS3Store(S3Config(cfg), sc.KeyPrefix, logger))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}

// S3Config converts the S3 section for the storage package
func S3Config(cfg *config.Config) *storage.S3Config {
	return &storage.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		UseSSL:          cfg.S3.UseSSL,
	}
}

// opened drops the typed nil a failed constructor returns
func opened[S storage.Store](s S, err error) (storage.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
