package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier surfaces non-fatal problems to the user
type Notifier interface {
	Warn(ctx context.Context, message string, err error)
}

// LogNotifier writes warnings to the log only
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Warn(_ context.Context, message string, err error) {
	n.Logger.WithError(err).Warn(message)
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Clock returns the reference time for statistics
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
