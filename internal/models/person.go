package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filmography guarda referencias (_id) a documentos de media.
type Filmography struct {
	Acting    []primitive.ObjectID `json:"acting" bson:"acting"`
	Directing []primitive.ObjectID `json:"directing" bson:"directing"`
}

type PersonRecord struct {
	ID                 primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ExternalID         int                `json:"tmdb_id" bson:"tmdb_id"`
	Name               string             `json:"name" bson:"name"`
	Biography          *string            `json:"biography" bson:"biography"`
	Birthday           *string            `json:"birthday" bson:"birthday"`
	Deathday           *string            `json:"deathday" bson:"deathday"`
	PlaceOfBirth       *string            `json:"place_of_birth" bson:"place_of_birth"`
	KnownForDepartment *string            `json:"known_for_department" bson:"known_for_department"`
	ProfileURL         *string            `json:"profile_path" bson:"profile_path"`
	Popularity         *float64           `json:"popularity" bson:"popularity"`
	MovieCredits       Filmography        `json:"movie_credits" bson:"movie_credits"`
	TVCredits          Filmography        `json:"tv_credits" bson:"tv_credits"`
	CreatedAt          time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (p *PersonRecord) IsStale(now time.Time, staleAfter time.Duration) bool {
	return now.Sub(p.UpdatedAt) > staleAfter
}

type ResolvedFilmography struct {
	Acting    []MediaRecord `json:"acting"`
	Directing []MediaRecord `json:"directing"`
}

// PersonView es la respuesta de GET /person/{id} con las referencias resueltas.
type PersonView struct {
	*PersonRecord
	MovieCredits ResolvedFilmography `json:"movie_credits"`
	TVCredits    ResolvedFilmography `json:"tv_credits"`
}
