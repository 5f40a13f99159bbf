package models

import "time"

// ----- SUMMARY -----

// MediaCacheSummary cuenta registros por tipo y completitud.
type MediaCacheSummary struct {
	Total          int64            `json:"total"`
	ByKind         map[string]int64 `json:"byKind"`
	Complete       int64            `json:"complete"`
	Partial        int64            `json:"partial"`
	StaleComplete  int64            `json:"staleComplete"`
	StaleAfterDays float64          `json:"staleAfterDays"`
}

// ----- PENDING -----

// PendingMedia registro Partial o vencido, candidato a refresco.
type PendingMedia struct {
	ExternalID   int          `json:"tmdb_id" bson:"tmdb_id"`
	Kind         MediaKind    `json:"media_type" bson:"media_type"`
	Title        string       `json:"title" bson:"title"`
	Completeness Completeness `json:"data_status" bson:"data_status"`
	UpdatedAt    time.Time    `json:"updatedAt" bson:"updatedAt"`
}

type PendingMediaList struct {
	Limit int64          `json:"limit"`
	Items []PendingMedia `json:"items"`
}

// ----- REFRESH -----

// RefreshMediaRequest body de /media/refresh.
type RefreshMediaRequest struct {
	Limit       int64 `json:"limit"`
	Parallelism int   `json:"parallelism"`
}

// RefreshMediaResult resultado de /media/refresh.
type RefreshMediaResult struct {
	Processed int `json:"processed"`
	Refreshed int `json:"refreshed"`
	Fallback  int `json:"fallback"`
	Failed    int `json:"failed"`
	Batches   int `json:"batches"`
}
