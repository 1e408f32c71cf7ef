package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"memo-registry/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploader(t *testing.T, active string) *storage.LogUploader {
	t.Helper()
	u, err := storage.NewLogUploader(&storage.S3Config{
		Endpoint:        "http://127.0.0.1:1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Region:          "us-east-1",
		Bucket:          "logs",
	}, testLogger(), func() string { return active })
	require.NoError(t, err)
	return u
}

func TestLogUploader_UploadOldLogs(t *testing.T) {
	t.Run("ディレクトリがなければエラー", func(t *testing.T) {
		u := newTestUploader(t, "")
		_, err := u.UploadOldLogs(context.Background(), filepath.Join(t.TempDir(), "none"), time.Hour)
		assert.Error(t, err)
	})

	t.Run("新しいファイルと使用中のファイルは対象外", func(t *testing.T) {
		dir := t.TempDir()
		active := filepath.Join(dir, "app_active.log")
		fresh := filepath.Join(dir, "app_fresh.log")
		require.NoError(t, os.WriteFile(active, []byte("{}\n"), 0644))
		require.NoError(t, os.WriteFile(fresh, []byte("{}\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

		// 使用中のファイルは古くても送らない
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, os.Chtimes(active, old, old))

		u := newTestUploader(t, active)
		n, err := u.UploadOldLogs(context.Background(), dir, 24*time.Hour)
		require.NoError(t, err)
		assert.Zero(t, n)

		for _, p := range []string{active, fresh} {
			_, err := os.Stat(p)
			assert.NoError(t, err)
		}
	})
}

func TestLogUploader_Live(t *testing.T) {
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT が未設定のためスキップ")
	}

	u, err := storage.NewLogUploader(&storage.S3Config{
		Endpoint:        endpoint,
		AccessKeyID:     os.Getenv("TEST_S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("TEST_S3_SECRET_ACCESS_KEY"),
		Region:          "us-east-1",
		Bucket:          os.Getenv("TEST_S3_BUCKET"),
	}, testLogger(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "app_old.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"msg":"test"}`+"\n"), 0644))

	n, err := u.UploadOldLogs(context.Background(), dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
