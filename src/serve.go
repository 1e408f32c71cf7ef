package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"memo-registry/src/app"
	"memo-registry/src/config"
	"memo-registry/src/logger"
	"memo-registry/src/routes"
	"memo-registry/src/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "HTTPサーバーを起動",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg())
		},
	}
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ロガーを初期化
	if err := logger.InitLogger(logger.Options{
		Level:     cfg.Log.Level,
		Directory: cfg.Log.Directory,
		Console:   true,
	}); err != nil {
		return err
	}
	defer logger.CloseLogger()
	log := logger.Log

	log.Info("アプリケーションを開始しています")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("ストレージの初期化に失敗")
		return err
	}
	defer a.Close()

	// S3アップローダーを初期化（設定が有効な場合）
	var uploader *storage.LogUploader
	if cfg.Log.UploadEnabled {
		uploader, err = storage.NewLogUploader(app.S3Config(cfg), log, logger.GetCurrentLogFile)
		if err != nil {
			log.WithError(err).Error("S3アップローダーの初期化に失敗")
		} else {
			uploader.StartPeriodicUpload(ctx, cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge)
		}
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	opts := routes.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		Driver:       cfg.Storage.Driver,
	}
	if h, ok := a.Store.(interface{ Health() error }); ok {
		opts.Health = h.Health
	}
	routes.SetupRoutes(r, a.Registry, log, opts)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("サーバーの起動に失敗")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("シャットダウンシグナルを受信しました")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("サーバーの停止に失敗")
	}

	// 保存に失敗した変更が残っていれば最後に再同期
	if a.Registry.Dirty() {
		if err := a.Registry.Sync(shutdownCtx); err != nil {
			log.WithError(err).Error("終了時の再同期に失敗")
		}
	}

	// 最後のログアップロードを実行
	if uploader != nil {
		log.Info("最後のログアップロードを実行中...")
		if _, err := uploader.UploadOldLogs(shutdownCtx, cfg.Log.Directory, 0); err != nil {
			log.WithError(err).Error("最後のログアップロードに失敗")
		}
	}
	return nil
}
