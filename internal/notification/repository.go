package notification

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository handles DB operations for notifications.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{collection: db.Collection("notifications")}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// GetDueNotifications fetches scheduled notifications whose send time has passed, oldest first.
func (r *NotificationRepository) GetDueNotifications(ctx context.Context, now time.Time) ([]*Notification, error) {
	filter := bson.M{"status": StatusScheduled, "send_time": bson.M{"$lte": now}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "send_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var notifications []*Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, status string) ([]*Notification, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(200))
	if err != nil {
		return nil, err
	}
	notifications := []*Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UpdateNotificationStatus records the outcome of a delivery attempt.
func (r *NotificationRepository) UpdateNotificationStatus(ctx context.Context, id primitive.ObjectID, status string, attempts int, lastError string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"attempts":   attempts,
		"last_error": lastError,
		"updated_at": time.Now(),
	}}
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("notification not found")
	}
	return nil
}
