package normalizer

import (
	"sort"

	"mediacore/internal/catalog"
	"mediacore/internal/models"
)

// MaxActingCredits limita la filmografía de actuación guardada por persona.
const MaxActingCredits = 10

// PersonFromDetails arma el PersonRecord sin referencias de filmografía.
func PersonFromDetails(d *catalog.PersonDetails) (*models.PersonRecord, error) {
	if d == nil || d.ID == nil || *d.ID <= 0 {
		return nil, &NormalizationError{Field: "id"}
	}
	if d.Name == nil || *d.Name == "" {
		return nil, &NormalizationError{Field: "name"}
	}
	return &models.PersonRecord{
		ExternalID:         *d.ID,
		Name:               *d.Name,
		Biography:          d.Biography,
		Birthday:           d.Birthday,
		Deathday:           d.Deathday,
		PlaceOfBirth:       d.PlaceOfBirth,
		KnownForDepartment: d.KnownForDepartment,
		ProfileURL:         ImageURL("w500", d.ProfilePath),
		Popularity:         d.Popularity,
	}, nil
}

// TopActing devuelve los n créditos de actuación más populares.
func TopActing(credits *catalog.PersonCredits, n int) []catalog.PersonCredit {
	if credits == nil {
		return nil
	}
	cast := append([]catalog.PersonCredit(nil), credits.Cast...)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Popularity > cast[j].Popularity })
	if len(cast) > n {
		cast = cast[:n]
	}
	return cast
}

// Directing filtra el crew con job Director, sin repetidos.
func Directing(credits *catalog.PersonCredits) []catalog.PersonCredit {
	if credits == nil {
		return nil
	}
	seen := map[int]bool{}
	var out []catalog.PersonCredit
	for _, c := range credits.Crew {
		if c.Job != "Director" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// StubFromPersonCredit arma el stub Partial de un crédito de filmografía.
func StubFromPersonCredit(kind models.MediaKind, c catalog.PersonCredit) (models.MediaStub, bool) {
	return stub(kind, c.ID, c.Title, c.Name, c.ReleaseDate, c.FirstAirDate, c.VoteAverage, c.PosterPath)
}

// StubFromListItem arma el stub Partial de un item de lista (categoría, trending, búsqueda).
// Items de tipo person devuelven false.
func StubFromListItem(kind models.MediaKind, it catalog.ListItem) (models.MediaStub, bool) {
	if it.MediaType != "" {
		k, ok := models.ParseKind(it.MediaType)
		if !ok {
			return models.MediaStub{}, false
		}
		kind = k
	}
	return stub(kind, it.ID, it.Title, it.Name, it.ReleaseDate, it.FirstAirDate, it.VoteAverage, it.PosterPath)
}

func stub(kind models.MediaKind, id int, title, name, release, firstAir *string, vote *float64, poster *string) (models.MediaStub, bool) {
	t := pickTitle(kind, title, name)
	if id <= 0 || t == "" {
		return models.MediaStub{}, false
	}
	date := release
	if kind == models.KindSeries {
		date = firstAir
	}
	if date != nil && *date == "" {
		date = nil
	}
	return models.MediaStub{
		ExternalID:  id,
		Kind:        kind,
		Title:       t,
		VoteAverage: vote,
		ReleaseDate: date,
		PosterURL:   ImageURL("w500", poster),
	}, true
}
