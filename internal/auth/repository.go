package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	accounts *mongo.Collection
	sessions *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		accounts: db.Collection("accounts"),
		sessions: db.Collection("sessions"),
	}
}

func (r *UserRepository) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.accounts.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (*User, error) {
	return r.findUser(ctx, bson.M{"userid": userID})
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetUserByVerifyKey(ctx context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.findUser(ctx, bson.M{"verify_key": hash})
}

func (r *UserRepository) GetUserByResetKey(ctx context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, nil
	}
	return r.findUser(ctx, bson.M{"reset_key": hash})
}

func (r *UserRepository) CreateUser(ctx context.Context, user *User) error {
	_, err := r.accounts.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, userID string, patch UserPatch) error {
	set, unset := bson.M{}, bson.M{}
	if patch.Verified != nil {
		set["verified"] = *patch.Verified
	}
	for field, value := range map[string]*string{"verify_key": patch.VerifyKey, "reset_key": patch.ResetKey} {
		switch {
		case value == nil:
		case *value == "":
			unset[field] = ""
		default:
			set[field] = *value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}
	res, err := r.accounts.UpdateOne(ctx, bson.M{"userid": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// UpdatePassword stores the new hash and burns any outstanding reset key.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	update := bson.M{
		"$set":   bson.M{"password_hash": hash},
		"$unset": bson.M{"reset_key": ""},
	}
	res, err := r.accounts.UpdateOne(ctx, bson.M{"userid": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

func (r *UserRepository) CreateSession(ctx context.Context, session *Session) error {
	_, err := r.sessions.InsertOne(ctx, session)
	return err
}

func (r *UserRepository) GetSession(ctx context.Context, key string) (*Session, error) {
	var session Session
	err := r.sessions.FindOne(ctx, bson.M{"key": key}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *UserRepository) DeleteSession(ctx context.Context, key string) error {
	_, err := r.sessions.DeleteOne(ctx, bson.M{"key": key})
	return err
}

func (r *UserRepository) ClearCSRFToken(ctx context.Context, key string) error {
	_, err := r.sessions.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$unset": bson.M{"csrf_token": ""}})
	return err
}
