// Package notify delivers status-change digests and events.
package notify

import (
	"context"

	"github.com/rajasatyajit/StatusAggregator/internal/logger"
)

// Notifier sends one human-readable message
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// LogNotifier writes notifications to the log. Used when no mail endpoint is
// configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, subject, message string) error {
	logger.WithContext(ctx).Info("Notification", "subject", subject, "message", message)
	return nil
}
