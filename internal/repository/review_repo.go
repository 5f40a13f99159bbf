package repository

import (
	"context"

	"mediacore/internal/db"
	"mediacore/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository struct {
	col      *mongo.Collection
	usersCol string
}

func NewReviewRepository(database *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		col:      database.Collection(db.ReviewCollection),
		usersCol: db.UserCollection,
	}
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *models.Review) error {
	res, err := r.col.InsertOne(ctx, rv)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rv.ID = oid
	}
	return nil
}

// DeleteForUser borra solo reviews que pertenecen al usuario.
func (r *ReviewRepository) DeleteForUser(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Review{}
	for cur.Next(ctx) {
		var rv models.Review
		if err := cur.Decode(&rv); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, cur.Err()
}

// ListByMedia devuelve las reviews del registro, más nuevas primero,
// con el username del autor.
func (r *ReviewRepository) ListByMedia(ctx context.Context, mediaID primitive.ObjectID) ([]models.ReviewView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "mediaId", Value: mediaID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: r.usersCol},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$addFields", Value: bson.D{{Key: "username", Value: "$user.info.username"}}}},
		{{Key: "$project", Value: bson.D{{Key: "user", Value: 0}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ReviewView{}
	for cur.Next(ctx) {
		var rv models.ReviewView
		if err := cur.Decode(&rv); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, cur.Err()
}
