package database_test

import (
	"context"
	"io"
	"os"
	"strconv"
	"testing"

	"memo-registry/src/database"
	"memo-registry/src/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := &database.Config{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		DBName:   "memo_registry",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=memo_registry sslmode=disable", cfg.DSN())
}

// TEST_DB_HOST が設定されている場合のみ実行
func TestDB_Store(t *testing.T) {
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST が未設定のためスキップ")
	}
	port, _ := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if port == 0 {
		port = 5432
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	db, err := database.NewDB(ctx, &database.Config{
		Host:     host,
		Port:     port,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
		SSLMode:  "disable",
	}, logger)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Health())

	key := "test-" + t.Name()
	_, err = db.Get(ctx, key+"-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, db.Set(ctx, key, []byte(`["教務課"]`)))
	require.NoError(t, db.Set(ctx, key, []byte(`["教務課","予算課"]`)))

	got, err := db.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `["教務課","予算課"]`, string(got))
}
