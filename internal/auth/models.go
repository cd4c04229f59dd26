package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent Role = "Student"
	RoleStaff   Role = "Staff"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID       string             `bson:"userid" json:"userid"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Major        string             `bson:"major" json:"major"`
	Role         Role               `bson:"role" json:"role"`
	Verified     bool               `bson:"verified" json:"verified"`
	VerifyKey    string             `bson:"verify_key,omitempty" json:"-"` // hash of the raw verification key
	ResetKey     string             `bson:"reset_key,omitempty" json:"-"`  // hash of the raw reset key
}

// UserPatch lists the mutable account fields. Nil fields are left untouched;
// an empty key clears the stored hash.
type UserPatch struct {
	Verified  *bool
	VerifyKey *string
	ResetKey  *string
}

type SessionData struct {
	UserID string `bson:"userid" json:"userid"`
}

type Session struct {
	Key       string      `bson:"key" json:"-"`
	Expiry    time.Time   `bson:"expiry" json:"expiry"`
	Data      SessionData `bson:"data" json:"data"`
	CSRFToken string      `bson:"csrf_token,omitempty" json:"csrf_token,omitempty"`
}

// Active reports whether the session has not yet expired at now.
func (s *Session) Active(now time.Time) bool {
	return s != nil && now.Before(s.Expiry)
}

// CanAct reports whether the session still holds a CSRF token.
func (s *Session) CanAct() bool {
	return s != nil && s.CSRFToken != ""
}

type RegisterRequest struct {
	UserID   string `json:"userid" form:"userid"`
	Name     string `json:"name" form:"name"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Major    string `json:"major" form:"major"`
}

type Credential struct {
	UserID   string `json:"userid" form:"userid" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Key            string `json:"key" form:"reset_key" validate:"required"`
	Password       string `json:"password" form:"pass" validate:"required"`
	RepeatPassword string `json:"repeat_password" form:"repeat_pass" validate:"required"`
}
