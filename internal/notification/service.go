package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxAttempts bounds delivery attempts before a notification is marked failed.
const maxAttempts = 3

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetDueNotifications(ctx context.Context, now time.Time) ([]*Notification, error)
	ListNotifications(ctx context.Context, status string) ([]*Notification, error)
	UpdateNotificationStatus(ctx context.Context, id primitive.ObjectID, status string, attempts int, lastError string) error
}

// NotificationService queues outgoing email and delivers it in the background.
type NotificationService struct {
	repo   NotificationStore
	mailer Mailer
	logger *zap.Logger
	now    func() time.Time
}

func NewNotificationService(repo NotificationStore, mailer Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, mailer: mailer, logger: logger.Named("notification"), now: time.Now}
}

// Notify queues an email for immediate delivery. It only fails when the
// queue itself cannot be written.
func (s *NotificationService) Notify(ctx context.Context, to, subject, body string) error {
	now := s.now()
	return s.repo.CreateNotification(ctx, &Notification{
		To:        to,
		Subject:   subject,
		Body:      body,
		SendTime:  now,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// SendDueNotifications delivers everything that is due and records each outcome.
func (s *NotificationService) SendDueNotifications(ctx context.Context) {
	notifications, err := s.repo.GetDueNotifications(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to fetch due notifications", zap.Error(err))
		return
	}
	for _, n := range notifications {
		attempts := n.Attempts + 1
		status, lastError := StatusSent, ""
		if err := s.mailer.Send(ctx, n.To, n.Subject, n.Body); err != nil {
			lastError = err.Error()
			status = StatusScheduled
			if attempts >= maxAttempts {
				status = StatusFailed
			}
			s.logger.Warn("notification delivery failed",
				zap.String("id", n.ID.Hex()), zap.Int("attempts", attempts), zap.Error(err))
		}
		if err := s.repo.UpdateNotificationStatus(ctx, n.ID, status, attempts, lastError); err != nil {
			s.logger.Error("failed to record notification status", zap.String("id", n.ID.Hex()), zap.Error(err))
		}
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, status string) ([]*Notification, error) {
	return s.repo.ListNotifications(ctx, status)
}
