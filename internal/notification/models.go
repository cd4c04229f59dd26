package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusFailed    = "failed"
)

// Notification is one queued email.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	To        string             `bson:"to" json:"to"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"body" json:"-"`
	SendTime  time.Time          `bson:"send_time" json:"send_time"`
	Status    string             `bson:"status" json:"status"`
	Attempts  int                `bson:"attempts" json:"attempts"`
	LastError string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
