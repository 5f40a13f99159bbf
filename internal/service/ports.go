package service

import (
	"context"
	"time"

	"mediacore/internal/catalog"
	"mediacore/internal/models"
	"mediacore/internal/recommender"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interfaces de los colaboradores. Las implementan los repositorios,
// el cliente del catálogo y el del recomendador; los tests usan fakes.

type MediaStore interface {
	FindByExternalID(ctx context.Context, kind models.MediaKind, externalID int) (*models.MediaRecord, error)
	Upsert(ctx context.Context, rec *models.MediaRecord) (*models.MediaRecord, error)
	EnsurePartial(ctx context.Context, stub models.MediaStub) (*models.MediaRecord, error)
	FindByInternalIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MediaRecord, error)
}

type ItemCatalog interface {
	FetchItemBundle(ctx context.Context, kind models.MediaKind, id int) *catalog.Bundle
}

type PersonCatalog interface {
	FetchPersonBundle(ctx context.Context, id int) *catalog.PersonBundle
}

type ListCatalog interface {
	Category(ctx context.Context, kind models.MediaKind, category string, page int) (*catalog.ListPage, error)
	Trending(ctx context.Context, kind models.MediaKind, window string, page int) (*catalog.ListPage, error)
	Search(ctx context.Context, query string, page int) (*catalog.ListPage, error)
}

type PersonStore interface {
	FindByExternalID(ctx context.Context, externalID int) (*models.PersonRecord, error)
	Upsert(ctx context.Context, p *models.PersonRecord) (*models.PersonRecord, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, rv *models.Review) error
	DeleteForUser(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
	ListByMedia(ctx context.Context, mediaID primitive.ObjectID) ([]models.ReviewView, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserDoc, error)
	FindByUsername(ctx context.Context, username string) (*models.UserDoc, error)
	FindByEmail(ctx context.Context, email string) (*models.UserDoc, error)
	Insert(ctx context.Context, u *models.UserDoc) error
	UpdateByID(ctx context.Context, id primitive.ObjectID, update bson.M) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

type HistoryStore interface {
	Insert(ctx context.Context, run *models.RecommendationRun) error
	FindByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecommendationRun, error)
}

// CandidateSource es el recomendador externo.
type CandidateSource interface {
	Recommend(ctx context.Context, strategy recommender.Strategy, payload any) ([]models.RecommendationCandidate, error)
}

// JSONCache es el cache Redis (listas y candidatos).
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// MediaResolver resuelve un item por la máquina de estados de MediaService.
type MediaResolver interface {
	Resolve(ctx context.Context, kind models.MediaKind, externalID int) (*Resolution, error)
}
