package catalog

import "mediacore/internal/models"

// Payloads crudos del catálogo. Solo se declaran los campos que se usan.

type CreatedBy struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ProfilePath *string `json:"profile_path"`
}

type Details struct {
	ID               *int                    `json:"id"`
	Title            *string                 `json:"title"`
	Name             *string                 `json:"name"`
	OriginalTitle    *string                 `json:"original_title"`
	OriginalName     *string                 `json:"original_name"`
	Overview         *string                 `json:"overview"`
	Genres           []models.Genre          `json:"genres"`
	ReleaseDate      *string                 `json:"release_date"`
	FirstAirDate     *string                 `json:"first_air_date"`
	Runtime          *int                    `json:"runtime"`
	NumberOfSeasons  *int                    `json:"number_of_seasons"`
	NumberOfEpisodes *int                    `json:"number_of_episodes"`
	VoteAverage      *float64                `json:"vote_average"`
	VoteCount        *int                    `json:"vote_count"`
	PosterPath       *string                 `json:"poster_path"`
	BackdropPath     *string                 `json:"backdrop_path"`
	IMDbID           *string                 `json:"imdb_id"`
	SpokenLanguages  []models.SpokenLanguage `json:"spoken_languages"`
	Status           *string                 `json:"status"`
	Tagline          *string                 `json:"tagline"`
	Homepage         *string                 `json:"homepage"`
	Revenue          *int64                  `json:"revenue"`
	Budget           *int64                  `json:"budget"`
	Adult            *bool                   `json:"adult"`
	CreatedBy        []CreatedBy             `json:"created_by"`
}

type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   *string `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Popularity  float64 `json:"popularity"`
}

type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type Videos struct {
	Results []Video `json:"results"`
}

// Keywords: películas responden {keywords:[...]}, series {results:[...]}.
type Keywords struct {
	Keywords []models.Keyword `json:"keywords"`
	Results  []models.Keyword `json:"results"`
}

func (k *Keywords) All() []models.Keyword {
	if k == nil {
		return nil
	}
	if len(k.Keywords) > 0 {
		return k.Keywords
	}
	return k.Results
}

// ====== personas ======

type PersonDetails struct {
	ID                 *int     `json:"id"`
	Name               *string  `json:"name"`
	Biography          *string  `json:"biography"`
	Birthday           *string  `json:"birthday"`
	Deathday           *string  `json:"deathday"`
	PlaceOfBirth       *string  `json:"place_of_birth"`
	KnownForDepartment *string  `json:"known_for_department"`
	ProfilePath        *string  `json:"profile_path"`
	Popularity         *float64 `json:"popularity"`
}

// PersonCredit es una entrada de movie_credits / tv_credits.
type PersonCredit struct {
	ID           int      `json:"id"`
	Title        *string  `json:"title"`
	Name         *string  `json:"name"`
	ReleaseDate  *string  `json:"release_date"`
	FirstAirDate *string  `json:"first_air_date"`
	VoteAverage  *float64 `json:"vote_average"`
	PosterPath   *string  `json:"poster_path"`
	Popularity   float64  `json:"popularity"`
	Character    *string  `json:"character"`
	Job          string   `json:"job"`
}

type PersonCredits struct {
	Cast []PersonCredit `json:"cast"`
	Crew []PersonCredit `json:"crew"`
}

// ====== listas ======

type ListItem struct {
	ID           int      `json:"id"`
	MediaType    string   `json:"media_type"`
	Title        *string  `json:"title"`
	Name         *string  `json:"name"`
	ReleaseDate  *string  `json:"release_date"`
	FirstAirDate *string  `json:"first_air_date"`
	VoteAverage  *float64 `json:"vote_average"`
	PosterPath   *string  `json:"poster_path"`
	ProfilePath  *string  `json:"profile_path"`
	Popularity   float64  `json:"popularity"`
}

type ListPage struct {
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	Results      []ListItem `json:"results"`
}
