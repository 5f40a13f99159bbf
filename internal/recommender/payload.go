package recommender

import (
	"strconv"

	"mediacore/internal/models"
)

// Metadata son los features de contenido que espera el recomendador.
type Metadata struct {
	MediaType       string   `json:"media_type"`
	Title           string   `json:"title"`
	Overview        string   `json:"overview"`
	SpokenLanguages []string `json:"spoken_languages"`
	VoteAverage     float64  `json:"vote_average"`
	ReleaseYear     string   `json:"release_year"`
	Genres          []string `json:"genres"`
	Director        []string `json:"director"`
	Cast            []string `json:"cast"`
	Keywords        []string `json:"keywords"`
}

// ItemFeatures es un item puntuado con su metadata.
type ItemFeatures struct {
	TMDBID   int      `json:"tmdb_id"`
	Rating   *float64 `json:"rating,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// SimilarRequest body de content-based similar-items.
type SimilarRequest struct {
	Items            []ItemFeatures `json:"items"`
	NRecommendations int            `json:"n_recommendations"`
}

// DiscoverRequest body de content-based discover.
type DiscoverRequest struct {
	TMDBID   *int     `json:"tmdb_id,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// HybridRequest body de las estrategias híbridas. ratings va como mapa tmdb_id -> rating.
type HybridRequest struct {
	Ratings     map[string]float64 `json:"ratings"`
	RequestData []ItemFeatures     `json:"request_data,omitempty"`
	Metadata    []ItemFeatures     `json:"metadata,omitempty"`
}

// RatingsMap convierte los ratings al formato {"603": 4.5}.
func RatingsMap(ratings map[int]float64) map[string]float64 {
	out := make(map[string]float64, len(ratings))
	for id, r := range ratings {
		out[strconv.Itoa(id)] = r
	}
	return out
}

// MetadataFromRecord arma los features a partir de un MediaRecord.
func MetadataFromRecord(rec *models.MediaRecord) Metadata {
	m := Metadata{
		MediaType:       string(rec.Kind),
		Title:           rec.Title,
		SpokenLanguages: []string{},
		Genres:          []string{},
		Director:        []string{},
		Cast:            []string{},
		Keywords:        []string{},
	}
	if rec.Overview != nil {
		m.Overview = *rec.Overview
	}
	if rec.VoteAverage != nil {
		m.VoteAverage = *rec.VoteAverage
	}
	if y, ok := rec.ReleaseYear(); ok {
		m.ReleaseYear = strconv.Itoa(y)
	}
	for _, l := range rec.SpokenLanguages {
		m.SpokenLanguages = append(m.SpokenLanguages, l.ISO639_1)
	}
	for _, g := range rec.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	m.Director = append(m.Director, rec.DirectorNames()...)
	m.Cast = append(m.Cast, rec.CastNames()...)
	for _, k := range rec.Keywords {
		m.Keywords = append(m.Keywords, k.Name)
	}
	return m
}

// Filters usa los features de discover como post-filtros.
func (m Metadata) Filters() models.Filters {
	var f models.Filters
	if m.VoteAverage > 0 {
		v := m.VoteAverage
		f.MinRating = &v
	}
	if y, err := strconv.Atoi(m.ReleaseYear); err == nil && y > 0 {
		f.MinYear = &y
	}
	f.Directors = m.Director
	f.Cast = m.Cast
	return f
}
