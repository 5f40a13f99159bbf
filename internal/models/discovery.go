package models

// MediaPage es una página de lista (categoría, trending o búsqueda) con los
// items ya guardados como registros (Partial si no existían).
type MediaPage struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []MediaRecord `json:"results"`
	// solo en búsquedas
	People []PersonHit `json:"people,omitempty"`
}

type PersonHit struct {
	ExternalID int     `json:"tmdb_id"`
	Name       string  `json:"name"`
	ProfileURL *string `json:"profile_path"`
	Popularity float64 `json:"popularity"`
}

// Record arma el registro Partial equivalente, sin _id.
func (s MediaStub) Record() MediaRecord {
	return MediaRecord{
		Completeness: Partial,
		ExternalID:   s.ExternalID,
		Kind:         s.Kind,
		Title:        s.Title,
		VoteAverage:  s.VoteAverage,
		ReleaseDate:  s.ReleaseDate,
		PosterURL:    s.PosterURL,
	}
}
