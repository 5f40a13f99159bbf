package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinReviewRating     = 1
	MaxReviewRating     = 10
	MaxReviewCommentLen = 500
)

type Review struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     primitive.ObjectID `json:"userId" bson:"userId"`
	MediaID    primitive.ObjectID `json:"mediaId" bson:"mediaId"`
	ExternalID int                `json:"tmdb_id" bson:"tmdb_id"`
	Kind       MediaKind          `json:"media_type" bson:"media_type"`
	Rating     int                `json:"rating" bson:"rating"`
	Comment    string             `json:"comment" bson:"comment"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}

// ReviewView agrega el username del autor (vía $lookup).
type ReviewView struct {
	Review   `bson:",inline"`
	Username string `json:"username" bson:"username"`
}

type ReviewInput struct {
	MediaType string `json:"mediaType" validate:"required,oneof=movie tv series"`
	TMDBID    int    `json:"tmdbId" validate:"required,gt=0"`
	Rating    int    `json:"rating" validate:"min=1,max=10"`
	Comment   string `json:"comment" validate:"max=500"`
}

// ReviewsUpdate es el body de PATCH /user/reviews/update.
type ReviewsUpdate struct {
	Add    []ReviewInput `json:"add"`
	Remove []string      `json:"remove"`
}

type ReviewsUpdateResult struct {
	Added   []Review `json:"added"`
	Skipped int      `json:"skipped"`
	Removed int64    `json:"removed"`
}
