// Package normalizer convierte payloads crudos del catálogo al formato
// guardado en Mongo. No hace I/O.
package normalizer

import (
	"fmt"
	"sort"
	"strings"

	"mediacore/internal/catalog"
	"mediacore/internal/models"
)

const (
	ImageBaseURL = "https://image.tmdb.org/t/p/"

	// cast con popularidad menor no entra en los créditos
	MinCastPopularity = 5.0
)

// NormalizationError: falta un campo de identidad en details.
type NormalizationError struct {
	Field string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizer: campo requerido ausente: %s", e.Field)
}

// FromBundle normaliza un bundle completo.
func FromBundle(kind models.MediaKind, b *catalog.Bundle) (*models.MediaRecord, error) {
	return Normalize(kind, b.Details, b.Credits, b.Videos, b.Keywords)
}

// Normalize arma el MediaRecord (sin _id ni timestamps). Queda Complete solo si
// trae runtime (película) o alguna cuenta de temporadas/episodios (serie);
// si no, Partial, y el próximo pedido lo vuelve a buscar.
func Normalize(
	kind models.MediaKind,
	details *catalog.Details,
	credits *catalog.Credits,
	videos *catalog.Videos,
	keywords *catalog.Keywords,
) (*models.MediaRecord, error) {
	if details == nil || details.ID == nil || *details.ID <= 0 {
		return nil, &NormalizationError{Field: "id"}
	}
	title := pickTitle(kind, details.Title, details.Name)
	if title == "" {
		return nil, &NormalizationError{Field: "title"}
	}

	m := &models.MediaRecord{
		Completeness:    models.Complete,
		ExternalID:      *details.ID,
		Kind:            kind,
		Title:           title,
		Overview:        details.Overview,
		Genres:          details.Genres,
		VoteAverage:     details.VoteAverage,
		VoteCount:       details.VoteCount,
		PosterURL:       ImageURL("w500", details.PosterPath),
		BackdropURL:     ImageURL("original", details.BackdropPath),
		SpokenLanguages: details.SpokenLanguages,
		ReleaseStatus:   details.Status,
		Tagline:         details.Tagline,
		Homepage:        details.Homepage,
		Revenue:         details.Revenue,
		Budget:          details.Budget,
		Adult:           details.Adult,
		Credits:         MergeCredits(kind, details, credits),
		TrailerKey:      SelectTrailer(videos),
		Keywords:        keywords.All(),
	}

	if kind == models.KindSeries {
		m.OriginalTitle = details.OriginalName
		m.ReleaseDate = details.FirstAirDate
		m.SeasonCount = details.NumberOfSeasons
		m.EpisodeCount = details.NumberOfEpisodes
	} else {
		m.OriginalTitle = details.OriginalTitle
		m.ReleaseDate = details.ReleaseDate
		m.Runtime = details.Runtime
		m.IMDbID = details.IMDbID
	}

	if !hasLength(m) {
		m.Completeness = models.Partial
	}

	// un registro Complete nunca lleva listas nulas
	if m.Genres == nil {
		m.Genres = []models.Genre{}
	}
	if m.Keywords == nil {
		m.Keywords = []models.Keyword{}
	}
	if m.SpokenLanguages == nil {
		m.SpokenLanguages = []models.SpokenLanguage{}
	}

	return m, nil
}

func hasLength(m *models.MediaRecord) bool {
	if m.Kind == models.KindSeries {
		return m.SeasonCount != nil || m.EpisodeCount != nil
	}
	return m.Runtime != nil
}

// MergeCredits: directores (película) o creadores (serie) primero, en el orden
// del catálogo; después el cast con popularidad >= 5.0, de mayor a menor.
func MergeCredits(kind models.MediaKind, details *catalog.Details, credits *catalog.Credits) []models.Credit {
	out := []models.Credit{}

	if kind == models.KindSeries {
		if details != nil {
			for _, c := range details.CreatedBy {
				out = append(out, models.Credit{
					Role:     models.RoleCreator,
					PersonID: c.ID,
					Name:     c.Name,
					ImageURL: ImageURL("w500", c.ProfilePath),
				})
			}
		}
	} else if credits != nil {
		for _, c := range credits.Crew {
			if c.Job != "Director" {
				continue
			}
			out = append(out, models.Credit{
				Role:     models.RoleDirector,
				PersonID: c.ID,
				Name:     c.Name,
				ImageURL: ImageURL("w500", c.ProfilePath),
			})
		}
	}

	if credits == nil {
		return out
	}

	cast := make([]catalog.CastMember, 0, len(credits.Cast))
	for _, c := range credits.Cast {
		if c.Popularity >= MinCastPopularity {
			cast = append(cast, c)
		}
	}
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Popularity > cast[j].Popularity })

	for _, c := range cast {
		out = append(out, models.Credit{
			Role:      models.RoleCast,
			PersonID:  c.ID,
			Name:      c.Name,
			Character: c.Character,
			ImageURL:  ImageURL("w500", c.ProfilePath),
		})
	}
	return out
}

// SelectTrailer devuelve la key del primer video Trailer oficial.
func SelectTrailer(videos *catalog.Videos) *string {
	if videos == nil {
		return nil
	}
	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Official && v.Key != "" {
			key := v.Key
			return &key
		}
	}
	return nil
}

// ImageURL arma la URL del CDN; sin path devuelve nil.
func ImageURL(size string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	u := ImageBaseURL + size + *path
	return &u
}

func pickTitle(kind models.MediaKind, title, name *string) string {
	first, second := title, name
	if kind == models.KindSeries {
		first, second = name, title
	}
	if first != nil && strings.TrimSpace(*first) != "" {
		return *first
	}
	if second != nil && strings.TrimSpace(*second) != "" {
		return *second
	}
	return ""
}
