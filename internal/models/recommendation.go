package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendationCandidate es un id devuelto por el recomendador, sin resolver.
type RecommendationCandidate struct {
	ExternalID int      `json:"tmdb_id" bson:"tmdb_id"`
	RawScore   *float64 `json:"score,omitempty" bson:"score,omitempty"`
}

// Filters son los post-filtros del armado de recomendaciones.
// Todo campo vacío se saltea.
type Filters struct {
	MinRating *float64 `json:"vote_average,omitempty" bson:"vote_average,omitempty"`
	MinYear   *int     `json:"release_year,omitempty" bson:"release_year,omitempty"`
	Directors []string `json:"director,omitempty" bson:"director,omitempty"`
	Cast      []string `json:"cast,omitempty" bson:"cast,omitempty"`
}

type AssemblyOutcome string

const (
	OutcomeOK           AssemblyOutcome = "ok"
	OutcomeNoCandidates AssemblyOutcome = "no_candidates"
	OutcomeNoMatches    AssemblyOutcome = "no_matches"
)

// Recommendations es el resultado del armado.
type Recommendations struct {
	Outcome AssemblyOutcome `json:"outcome"`
	Items   []MediaRecord   `json:"items"`
}

// RecommendationRun es el historial guardado en Mongo por cada armado.
type RecommendationRun struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Strategy   string              `bson:"strategy" json:"strategy"`
	Kind       MediaKind           `bson:"media_type" json:"media_type"`
	Candidates []int               `bson:"candidates" json:"candidates"`
	Results    []int               `bson:"results" json:"results"`
	Outcome    AssemblyOutcome     `bson:"outcome" json:"outcome"`
	Filters    Filters             `bson:"filters" json:"filters"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}
