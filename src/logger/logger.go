package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	Log         *logrus.Logger = logrus.New()
	mu          sync.Mutex
	currentFile *os.File
)

// Options ロガーの初期化オプション
type Options struct {
	Level     string
	Directory string
	// Console を false にするとファイルのみに出力する
	Console bool
}

// InitLogger ロガーを初期化し、ファイル出力を設定
func InitLogger(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	Log = logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	// JSON形式でログを出力
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	dir := opts.Directory
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ログディレクトリの作成に失敗: %w", err)
	}

	if err := rotateLogFile(dir); err != nil {
		return fmt.Errorf("ログファイルの作成に失敗: %w", err)
	}

	if opts.Console {
		Log.SetOutput(io.MultiWriter(os.Stdout, currentFile))
	} else {
		Log.SetOutput(currentFile)
	}

	Log.WithField("level", level.String()).Info("ロガーが初期化されました")
	return nil
}

// rotateLogFile 新しいログファイルを作成
func rotateLogFile(dir string) error {
	if currentFile != nil {
		currentFile.Close()
	}

	filename := fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	currentFile = file
	return nil
}

// GetCurrentLogFile 現在のログファイルパスを取得
func GetCurrentLogFile() string {
	mu.Lock()
	defer mu.Unlock()

	if currentFile != nil {
		return currentFile.Name()
	}
	return ""
}

// CloseLogger ロガーを終了
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if currentFile != nil {
		Log.Info("ログファイルを閉じます")
		Log.SetOutput(os.Stderr)
		currentFile.Close()
		currentFile = nil
	}
}

// WithFields フィールド付きログエントリを作成
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// WithField フィールド付きログエントリを作成（単一フィールド）
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}
