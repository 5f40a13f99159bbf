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

type MediaRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMediaRepository(database *mongo.Database) *MediaRepository {
	return &MediaRepository{
		col: database.Collection(db.MediaCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func mediaKey(kind models.MediaKind, externalID int) bson.M {
	return bson.M{"tmdb_id": externalID, "media_type": kind}
}

// FindByExternalID devuelve nil, nil si no existe.
func (r *MediaRepository) FindByExternalID(ctx context.Context, kind models.MediaKind, externalID int) (*models.MediaRecord, error) {
	var m models.MediaRecord
	err := r.col.FindOne(ctx, mediaKey(kind, externalID)).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert reemplaza todos los campos del registro (clave tmdb_id + media_type)
// y actualiza updatedAt. createdAt solo se escribe al insertar.
func (r *MediaRepository) Upsert(ctx context.Context, rec *models.MediaRecord) (*models.MediaRecord, error) {
	now := r.now()

	doc := *rec
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

	var out models.MediaRecord
	err := r.col.FindOneAndUpdate(ctx, mediaKey(rec.Kind, rec.ExternalID), update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		// dos upserts concurrentes del mismo id: el segundo pasa a ser un update
		err = r.col.FindOneAndUpdate(ctx, mediaKey(rec.Kind, rec.ExternalID), update, opts).Decode(&out)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsurePartial crea el stub si no existe. Nunca pisa un registro existente,
// así que un Complete no vuelve a Partial.
func (r *MediaRepository) EnsurePartial(ctx context.Context, stub models.MediaStub) (*models.MediaRecord, error) {
	now := r.now()
	update := bson.M{"$setOnInsert": bson.M{
		"data_status":  models.Partial,
		"title":        stub.Title,
		"vote_average": stub.VoteAverage,
		"release_date": stub.ReleaseDate,
		"poster_path":  stub.PosterURL,
		"createdAt":    now,
		"updatedAt":    now,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.MediaRecord
	err := r.col.FindOneAndUpdate(ctx, mediaKey(stub.Kind, stub.ExternalID), update, opts).Decode(&out)
	if mongo.IsDuplicateKeyError(err) {
		return r.FindByExternalID(ctx, stub.Kind, stub.ExternalID)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByInternalIDs busca por _id. El orden del resultado NO sigue al de ids.
func (r *MediaRepository) FindByInternalIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MediaRecord, error) {
	if len(ids) == 0 {
		return []models.MediaRecord{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.MediaRecord{}
	for cur.Next(ctx) {
		var m models.MediaRecord
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

// ====== mantenimiento ======

type mediaStatusCount struct {
	ID struct {
		Kind   models.MediaKind    `bson:"media_type"`
		Status models.Completeness `bson:"data_status"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

// CountByKindAndStatus agrupa por media_type y data_status.
func (r *MediaRepository) CountByKindAndStatus(ctx context.Context) (map[models.MediaKind]map[models.Completeness]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "media_type", Value: "$media_type"},
				{Key: "data_status", Value: "$data_status"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[models.MediaKind]map[models.Completeness]int64{}
	for cur.Next(ctx) {
		var row mediaStatusCount
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if out[row.ID.Kind] == nil {
			out[row.ID.Kind] = map[models.Completeness]int64{}
		}
		out[row.ID.Kind][row.ID.Status] += row.Count
	}
	return out, cur.Err()
}

// CountStale cuenta registros Complete con updatedAt anterior a before.
func (r *MediaRepository) CountStale(ctx context.Context, before time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"data_status": models.Complete,
		"updatedAt":   bson.M{"$lt": before},
	})
}

// ListPending devuelve Partial y Complete vencidos, los más viejos primero.
func (r *MediaRepository) ListPending(ctx context.Context, before time.Time, limit int64) ([]models.PendingMedia, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"data_status": models.Partial},
		bson.M{"data_status": models.Complete, "updatedAt": bson.M{"$lt": before}},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: 1}}).
		SetLimit(limit).
		SetProjection(bson.M{"tmdb_id": 1, "media_type": 1, "title": 1, "data_status": 1, "updatedAt": 1})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.PendingMedia{}
	for cur.Next(ctx) {
		var p models.PendingMedia
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}
