package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type MongoDBConfig struct {
	URI      string
	Database string
}

func NewMongoDBConfig() (*MongoDBConfig, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return nil, errors.New("MONGO_URI not set")
	}
	name := os.Getenv("MONGO_DATABASE")
	if name == "" {
		name = "student_requests"
	}
	return &MongoDBConfig{URI: uri, Database: name}, nil
}

// NewMongoDatabase connects, verifies the connection and registers the
// disconnect with the application lifecycle. The returned handle is the only
// store connection in the process.
func NewMongoDatabase(lc fx.Lifecycle, config *MongoDBConfig, logger *zap.Logger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", config.Database))

	db := client.Database(config.Database)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureIndexes(ctx, db)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing MongoDB connection")
			return client.Disconnect(ctx)
		},
	})
	return db, nil
}

// EnsureIndexes creates the unique lookups the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"accounts": {
			{Keys: bson.D{{Key: "userid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "verify_key", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "reset_key", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"sessions": {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"requests": {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "userid", Value: 1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "send_time", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}
