package repository

import (
	"context"
	"time"

	"mediacore/internal/db"
	"mediacore/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecommendationRepository struct {
	col *mongo.Collection
}

func NewRecommendationRepository(database *mongo.Database) *RecommendationRepository {
	return &RecommendationRepository{
		col: database.Collection(db.RecommendationCollection),
	}
}

func (r *RecommendationRepository) Insert(ctx context.Context, run *models.RecommendationRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, run)
	return err
}

// FindByUser lista el historial del usuario, más reciente primero.
func (r *RecommendationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecommendationRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.RecommendationRun{}
	for cur.Next(ctx) {
		var rec models.RecommendationRun
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}
