package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaKind es el tipo de media tal como lo usa el catálogo en sus rutas.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "tv"
)

// ParseKind acepta "movie", "tv" y "series".
func ParseKind(s string) (MediaKind, bool) {
	switch s {
	case "movie":
		return KindMovie, true
	case "tv", "series":
		return KindSeries, true
	}
	return "", false
}

type Completeness string

const (
	Partial  Completeness = "Partial"
	Complete Completeness = "Complete"
)

// DefaultStaleAfter: un registro Complete se considera viejo pasada una semana.
const DefaultStaleAfter = 7 * 24 * time.Hour

type CreditRole string

const (
	RoleCast     CreditRole = "cast"
	RoleDirector CreditRole = "director"
	RoleCreator  CreditRole = "creator"
)

type Genre struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

type Keyword struct {
	ID   int    `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

type SpokenLanguage struct {
	ISO639_1    string `json:"iso_639_1" bson:"iso_639_1"`
	EnglishName string `json:"english_name" bson:"english_name"`
	Name        string `json:"name" bson:"name"`
}

type Credit struct {
	Role      CreditRole `json:"type" bson:"type"`
	PersonID  int        `json:"id" bson:"id"`
	Name      string     `json:"name" bson:"name"`
	Character *string    `json:"character" bson:"character"`
	ImageURL  *string    `json:"image" bson:"image"`
}

// MediaRecord es el documento de la colección media.
// Los campos puntero son null cuando el catálogo no los informa.
type MediaRecord struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Completeness Completeness       `json:"data_status" bson:"data_status"`
	ExternalID   int                `json:"tmdb_id" bson:"tmdb_id"`
	Kind         MediaKind          `json:"media_type" bson:"media_type"`

	Title           string           `json:"title" bson:"title"`
	OriginalTitle   *string          `json:"original_title" bson:"original_title"`
	Overview        *string          `json:"overview" bson:"overview"`
	Genres          []Genre          `json:"genres" bson:"genres"`
	ReleaseDate     *string          `json:"release_date" bson:"release_date"`
	Runtime         *int             `json:"runtime" bson:"runtime"`
	SeasonCount     *int             `json:"number_of_seasons" bson:"number_of_seasons"`
	EpisodeCount    *int             `json:"number_of_episodes" bson:"number_of_episodes"`
	VoteAverage     *float64         `json:"vote_average" bson:"vote_average"`
	VoteCount       *int             `json:"vote_count" bson:"vote_count"`
	PosterURL       *string          `json:"poster_path" bson:"poster_path"`
	BackdropURL     *string          `json:"backdrop_path" bson:"backdrop_path"`
	IMDbID          *string          `json:"imdb_id" bson:"imdb_id"`
	SpokenLanguages []SpokenLanguage `json:"spoken_languages" bson:"spoken_languages"`
	ReleaseStatus   *string          `json:"release_status" bson:"release_status"`
	Tagline         *string          `json:"tagline" bson:"tagline"`
	Homepage        *string          `json:"homepage" bson:"homepage"`
	Revenue         *int64           `json:"revenue" bson:"revenue"`
	Budget          *int64           `json:"budget" bson:"budget"`
	Adult           *bool            `json:"adult" bson:"adult"`

	// directores/creadores primero, luego cast por popularidad
	Credits    []Credit  `json:"credits" bson:"credits"`
	TrailerKey *string   `json:"trailer_id" bson:"trailer_id"`
	Keywords   []Keyword `json:"keywords" bson:"keywords"`

	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsStale solo aplica a registros Complete.
func (m *MediaRecord) IsStale(now time.Time, staleAfter time.Duration) bool {
	if m.Completeness != Complete {
		return false
	}
	return now.Sub(m.UpdatedAt) > staleAfter
}

// NeedsRefresh: Partial o Complete vencido.
func (m *MediaRecord) NeedsRefresh(now time.Time, staleAfter time.Duration) bool {
	return m.Completeness != Complete || m.IsStale(now, staleAfter)
}

// ReleaseYear toma los primeros 4 dígitos de release_date.
func (m *MediaRecord) ReleaseYear() (int, bool) {
	if m.ReleaseDate == nil || len(*m.ReleaseDate) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi((*m.ReleaseDate)[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}

// DirectorNames incluye creadores de series.
func (m *MediaRecord) DirectorNames() []string {
	var out []string
	for _, c := range m.Credits {
		if c.Role == RoleDirector || c.Role == RoleCreator {
			out = append(out, c.Name)
		}
	}
	return out
}

func (m *MediaRecord) CastNames() []string {
	var out []string
	for _, c := range m.Credits {
		if c.Role == RoleCast {
			out = append(out, c.Name)
		}
	}
	return out
}

// MediaStub son los datos mínimos de un registro Partial
// (listas de categoría, filmografías).
type MediaStub struct {
	ExternalID  int       `json:"tmdb_id"`
	Kind        MediaKind `json:"media_type"`
	Title       string    `json:"title"`
	VoteAverage *float64  `json:"vote_average"`
	ReleaseDate *string   `json:"release_date"`
	PosterURL   *string   `json:"poster_path"`
}

// MediaRef referencia un item del catálogo desde un request.
type MediaRef struct {
	ExternalID int    `json:"tmdbId" validate:"required,gt=0"`
	MediaType  string `json:"mediaType" validate:"required,oneof=movie tv series"`
}

// MediaDetail es la respuesta de GET /media/{kind}/{id}.
type MediaDetail struct {
	*MediaRecord
	Reviews []ReviewView `json:"reviews"`
}
