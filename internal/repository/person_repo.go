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

type PersonRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPersonRepository(database *mongo.Database) *PersonRepository {
	return &PersonRepository{
		col: database.Collection(db.PersonCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *PersonRepository) FindByExternalID(ctx context.Context, externalID int) (*models.PersonRecord, error) {
	var p models.PersonRecord
	err := r.col.FindOne(ctx, bson.M{"tmdb_id": externalID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert reemplaza los campos de la persona (clave tmdb_id).
func (r *PersonRepository) Upsert(ctx context.Context, p *models.PersonRecord) (*models.PersonRecord, error) {
	now := r.now()

	doc := *p
	doc.ID = primitive.NilObjectID
	doc.CreatedAt = time.Time{}
	doc.UpdatedAt = now

	update := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.PersonRecord
	err := r.col.FindOneAndUpdate(ctx, bson.M{"tmdb_id": p.ExternalID}, update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		err = r.col.FindOneAndUpdate(ctx, bson.M{"tmdb_id": p.ExternalID}, update, opts).Decode(&out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
