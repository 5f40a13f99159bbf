package db

import (
	"context"
	"fmt"
	"time"

	"mediacore/internal/config"
	"mediacore/internal/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Nombres de colecciones.
const (
	MediaCollection          = "media"
	PersonCollection         = "persons"
	UserCollection           = "users"
	ReviewCollection         = "reviews"
	RecommendationCollection = "recommendations"
)

// Connect abre el cliente y hace ping.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	logging.Info().Str("db", cfg.MongoDB).Msg("[mongo] conectado")
	return client, client.Database(cfg.MongoDB), nil
}

// EnsureIndexes crea los índices que usan los repositorios. Es idempotente.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		MediaCollection: {
			{
				Keys:    bson.D{{Key: "tmdb_id", Value: 1}, {Key: "media_type", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "media_type", Value: 1}, {Key: "release_date", Value: -1}}},
			{Keys: bson.D{{Key: "data_status", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
		PersonCollection: {
			{Keys: bson.D{{Key: "tmdb_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "info.username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "info.email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ReviewCollection: {
			{Keys: bson.D{{Key: "mediaId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		RecommendationCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes %s: %w", name, err)
		}
	}
	logging.Info().Msg("[mongo] índices verificados")
	return nil
}
