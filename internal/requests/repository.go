package requests

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RequestRepository struct {
	collection *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{collection: db.Collection("requests")}
}

func (r *RequestRepository) InsertRequest(ctx context.Context, req *Request) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, req)
	return err
}

func (r *RequestRepository) GetRequest(ctx context.Context, id primitive.ObjectID) (*Request, error) {
	var req Request
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) find(ctx context.Context, filter bson.M) ([]*Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	requests := []*Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *RequestRepository) GetRequestsByUser(ctx context.Context, userID string) ([]*Request, error) {
	return r.find(ctx, bson.M{"userid": userID})
}

func (r *RequestRepository) GetAllRequests(ctx context.Context) ([]*Request, error) {
	return r.find(ctx, bson.M{})
}

func (r *RequestRepository) GetRequestsByCategory(ctx context.Context, category Category) ([]*Request, error) {
	return r.find(ctx, bson.M{"category": category})
}

// UpdateRequestStatus matches on status Pending so that two concurrent
// actions cannot both succeed.
func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, update StatusUpdate) (bool, error) {
	set := bson.M{
		"status":   update.Status,
		"acted_by": update.ActedBy,
		"acted_at": update.ActedAt,
	}
	if update.Note != "" {
		set["note"] = update.Note
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
