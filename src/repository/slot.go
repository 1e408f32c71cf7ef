package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"memo-registry/src/storage"

	"github.com/sirupsen/logrus"
)

// Slot names
const (
	MemosKey       = "memos"
	DepartmentsKey = "departments"
)

// Load reads key from store as JSON into a T.
// A missing slot, a read error or unparseable JSON all yield def.
func Load[T any](ctx context.Context, store storage.Store, key string, def T, logger *logrus.Logger) T {
	data, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.WithField("key", key).Debug("スロットが存在しないためデフォルト値を使用します")
		} else {
			logger.WithError(err).WithField("key", key).Warn("スロットの読み込みに失敗したためデフォルト値を使用します")
		}
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		logger.WithError(err).WithField("key", key).Warn("スロットのJSONが不正なためデフォルト値を使用します")
		return def
	}
	return value
}

// Save writes value to key as JSON
func Save[T any](ctx context.Context, store storage.Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}
	return nil
}
