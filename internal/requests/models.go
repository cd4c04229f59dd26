package requests

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryCourseRegistration Category = "CourseRegistration"
	CategoryCapstone           Category = "Capstone"
	CategoryComplaint          Category = "Complaint"
	CategoryOther              Category = "Other"
)

// Categories is the closed set of queues, in display order.
var Categories = []Category{
	CategoryCourseRegistration,
	CategoryCapstone,
	CategoryComplaint,
	CategoryOther,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusResolved  Status = "Resolved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// ParseAction accepts the two outcomes staff can give a request.
func ParseAction(s string) (Status, error) {
	switch Status(s) {
	case StatusResolved, StatusRejected:
		return Status(s), nil
	}
	return "", ErrInvalidAction
}

type Request struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"userid" json:"userid"`
	Username            string             `bson:"username" json:"username"`
	Email               string             `bson:"email" json:"email"`
	Phone               string             `bson:"phone" json:"phone"`
	Category            Category           `bson:"category" json:"category"`
	Body                string             `bson:"request" json:"request"`
	Semester            string             `bson:"semester" json:"semester"`
	SubmittedAt         time.Time          `bson:"submitted_at" json:"submitted_at"`
	Status              Status             `bson:"status" json:"status"`
	EstimatedCompletion time.Time          `bson:"estimated_completion" json:"-"`
	EstimateDisplay     string             `bson:"estimated_completion_display" json:"estimated_completion"`
	Note                string             `bson:"note,omitempty" json:"note,omitempty"`
	ActedBy             string             `bson:"acted_by,omitempty" json:"acted_by,omitempty"`
	ActedAt             *time.Time         `bson:"acted_at,omitempty" json:"acted_at,omitempty"`
}

// Owner is the submitting student as recorded on the request.
type Owner struct {
	UserID string
	Name   string
	Email  string
	Phone  string
}

type SubmitRequest struct {
	Category string `json:"category" form:"category" validate:"required"`
	Request  string `json:"request" form:"request" validate:"required"`
	Semester string `json:"semester" form:"semester" validate:"required"`
}

type CancelRequest struct {
	ID string `json:"id" form:"id" validate:"required"`
}

type ActRequest struct {
	ID     string `json:"id" form:"id" validate:"required"`
	Action string `json:"action" form:"action" validate:"required"`
	Note   string `json:"note" form:"note"`
}

// History groups one student's requests the way the student dashboard shows them.
type History struct {
	Pending   []*Request `json:"pending"`
	Actioned  []*Request `json:"actioned"`
	Cancelled []*Request `json:"cancelled"`
}
