package app

import (
	"context"

	"memo-registry/src/config"
	"memo-registry/src/repository"
	"memo-registry/src/storage"
	"memo-registry/src/usecase"

	"github.com/sirupsen/logrus"
)

// App bundles the opened store and the registry built on it
type App struct {
	Config   *config.Config
	Store    storage.Store
	Registry *usecase.Registry
	Logger   *logrus.Logger
}

// New opens the configured store and loads the registry from it
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, cfg, store, logger), nil
}

// NewWithStore builds the registry on an already opened store
func NewWithStore(ctx context.Context, cfg *config.Config, store storage.Store, logger *logrus.Logger) *App {
	repo := repository.NewMemoRepository(ctx, store, logger)
	registry := usecase.NewRegistry(repo, logger, usecase.Options{
		PageSize:           cfg.Registry.PageSize,
		MaxAttachmentBytes: cfg.Registry.MaxAttachmentBytes,
	})
	return &App{
		Config:   cfg,
		Store:    store,
		Registry: registry,
		Logger:   logger,
	}
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
