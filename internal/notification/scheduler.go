package notification

import (
	"StudentRequests/internal/config"
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NotificationScheduler periodically flushes the outbox.
type NotificationScheduler struct {
	service  *NotificationService
	interval time.Duration
	logger   *zap.Logger
}

func NewNotificationScheduler(service *NotificationService, cfg *config.AppConfig, logger *zap.Logger) *NotificationScheduler {
	return &NotificationScheduler{service: service, interval: cfg.NotifyInterval, logger: logger.Named("notification.scheduler")}
}

// StartScheduler ties the dispatch loop to the application lifecycle.
func (s *NotificationScheduler) StartScheduler(lc fx.Lifecycle) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.logger.Info("starting notification scheduler", zap.Duration("interval", s.interval))
			go func() {
				defer close(done)
				s.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			s.logger.Info("stopping notification scheduler")
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// Run dispatches due notifications every interval until ctx is cancelled.
func (s *NotificationScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.service.SendDueNotifications(ctx)
		case <-ctx.Done():
			return
		}
	}
}
