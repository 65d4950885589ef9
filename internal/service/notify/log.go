package notify

import (
	"context"

	drepo "Sentinel/internal/domain/repository"
	applogger "Sentinel/pkg/logger"
)

// LogNotifier writes pushes to the log; used when no transport is configured.
type LogNotifier struct {
	log *applogger.Logger
}

func NewLogNotifier(log *applogger.Logger) *LogNotifier { return &LogNotifier{log: log} }

var _ drepo.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Push(_ context.Context, to, text string) error {
	n.log.Info("notify.push", applogger.String("to", to), applogger.String("text", text))
	return nil
}
