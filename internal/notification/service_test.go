package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"StudentRequests/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memStore struct {
	mu    sync.Mutex
	items []*Notification
}

func (m *memStore) CreateNotification(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = primitive.NewObjectID()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *memStore) GetDueNotifications(_ context.Context, now time.Time) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for _, n := range m.items {
		if n.Status == StatusScheduled && !n.SendTime.After(now) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ListNotifications(_ context.Context, status string) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Notification{}
	for _, n := range m.items {
		if status == "" || n.Status == status {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateNotificationStatus(_ context.Context, id primitive.ObjectID, status string, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.ID == id {
			n.Status = status
			n.Attempts = attempts
			n.LastError = lastError
			return nil
		}
	}
	return errors.New("notification not found")
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestNotify_QueuesWithoutSending(t *testing.T) {
	store, mailer := &memStore{}, &fakeMailer{}
	svc := NewNotificationService(store, mailer, zap.NewNop())

	require.NoError(t, svc.Notify(context.Background(), "a@udst.edu.qa", "Hi", "body"))
	require.Len(t, store.items, 1)
	assert.Equal(t, StatusScheduled, store.items[0].Status)
	assert.Zero(t, mailer.count())
}

func TestSendDueNotifications(t *testing.T) {
	store, mailer := &memStore{}, &fakeMailer{}
	svc := NewNotificationService(store, mailer, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, svc.Notify(ctx, "a@udst.edu.qa", "Hi", "body"))
	require.NoError(t, svc.Notify(ctx, "b@udst.edu.qa", "Hi", "body"))

	svc.SendDueNotifications(ctx)
	assert.Equal(t, []string{"a@udst.edu.qa", "b@udst.edu.qa"}, mailer.sent)

	sent, _ := svc.ListNotifications(ctx, StatusSent)
	assert.Len(t, sent, 2)

	svc.SendDueNotifications(ctx)
	assert.Equal(t, 2, mailer.count())
}

func TestSendDueNotifications_GivesUpAfterMaxAttempts(t *testing.T) {
	store, mailer := &memStore{}, &fakeMailer{err: errors.New("mailbox unavailable")}
	svc := NewNotificationService(store, mailer, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, svc.Notify(ctx, "a@udst.edu.qa", "Hi", "body"))

	for i := 0; i < maxAttempts+2; i++ {
		svc.SendDueNotifications(ctx)
	}
	failed, _ := svc.ListNotifications(ctx, StatusFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, maxAttempts, failed[0].Attempts)
	assert.Equal(t, "mailbox unavailable", failed[0].LastError)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	store, mailer := &memStore{}, &fakeMailer{}
	svc := NewNotificationService(store, mailer, zap.NewNop())
	require.NoError(t, svc.Notify(context.Background(), "a@udst.edu.qa", "Hi", "body"))

	sched := NewNotificationScheduler(svc, &config.AppConfig{NotifyInterval: 10 * time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return mailer.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(&config.MailConfig{Transport: config.MailTransportLog}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)
	assert.NoError(t, m.Send(context.Background(), "a@udst.edu.qa", "s", "b"))

	m, err = NewMailer(&config.MailConfig{Transport: config.MailTransportSMTP, SMTPHost: "localhost", SMTPPort: 25, From: "x@udst.edu.qa"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, m)

	m, err = NewMailer(&config.MailConfig{Transport: config.MailTransportResend, ResendAPIKey: "re_test", From: "x@udst.edu.qa"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ResendMailer{}, m)

	_, err = NewMailer(&config.MailConfig{Transport: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}
