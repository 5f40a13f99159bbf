package service

import (
	"context"
	"sync"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/models"

	"github.com/sourcegraph/conc/pool"
)

const (
	defaultPendingLimit = 50
	maxPendingLimit     = 500
	defaultRefreshLimit = 100
	defaultParallelism  = 4
	maxParallelism      = 16
	refreshBatchSize    = 10
)

// MaintenanceStore son las consultas de mantenimiento del cache de media.
type MaintenanceStore interface {
	CountByKindAndStatus(ctx context.Context) (map[models.MediaKind]map[models.Completeness]int64, error)
	CountStale(ctx context.Context, before time.Time) (int64, error)
	ListPending(ctx context.Context, before time.Time, limit int64) ([]models.PendingMedia, error)
}

// AdminMaintenanceService revisa y refresca el cache de media.
type AdminMaintenanceService struct {
	store      MaintenanceStore
	resolver   MediaResolver
	staleAfter time.Duration
	now        func() time.Time
}

func NewAdminMaintenanceService(store MaintenanceStore, resolver MediaResolver, staleAfter time.Duration) *AdminMaintenanceService {
	if staleAfter <= 0 {
		staleAfter = models.DefaultStaleAfter
	}
	return &AdminMaintenanceService{
		store:      store,
		resolver:   resolver,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

func (s *AdminMaintenanceService) staleBefore() time.Time {
	return s.now().Add(-s.staleAfter)
}

// ---------------------- SUMMARY / PENDING ----------------------

// GetMediaSummary cuenta registros por tipo y completitud.
func (s *AdminMaintenanceService) GetMediaSummary(ctx context.Context) (*models.MediaCacheSummary, error) {
	counts, err := s.store.CountByKindAndStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.MediaCacheSummary{
		ByKind:         map[string]int64{},
		StaleAfterDays: s.staleAfter.Hours() / 24,
	}
	for kind, byStatus := range counts {
		for status, n := range byStatus {
			summary.Total += n
			summary.ByKind[string(kind)] += n
			switch status {
			case models.Complete:
				summary.Complete += n
			case models.Partial:
				summary.Partial += n
			}
		}
	}

	stale, err := s.store.CountStale(ctx, s.staleBefore())
	if err != nil {
		return nil, err
	}
	summary.StaleComplete = stale
	return summary, nil
}

// GetPendingMedia lista Partial y Complete vencidos, los más viejos primero.
func (s *AdminMaintenanceService) GetPendingMedia(ctx context.Context, limit int64) (*models.PendingMediaList, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	} else if limit > maxPendingLimit {
		limit = maxPendingLimit
	}

	items, err := s.store.ListPending(ctx, s.staleBefore(), limit)
	if err != nil {
		return nil, err
	}
	return &models.PendingMediaList{Limit: limit, Items: items}, nil
}

// ---------------------- REFRESH ----------------------

// RefreshPendingMedia re-resuelve los registros pendientes en batches que
// corren en paralelo (hasta Parallelism a la vez).
func (s *AdminMaintenanceService) RefreshPendingMedia(ctx context.Context, req *models.RefreshMediaRequest) (*models.RefreshMediaResult, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRefreshLimit
	} else if req.Limit > maxPendingLimit {
		req.Limit = maxPendingLimit
	}
	if req.Parallelism <= 0 {
		req.Parallelism = defaultParallelism
	} else if req.Parallelism > maxParallelism {
		req.Parallelism = maxParallelism
	}

	// 1) pendientes
	pending, err := s.store.ListPending(ctx, s.staleBefore(), req.Limit)
	if err != nil {
		return nil, err
	}
	result := &models.RefreshMediaResult{Processed: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	// 2) batches
	var batches [][]models.PendingMedia
	for i := 0; i < len(pending); i += refreshBatchSize {
		j := i + refreshBatchSize
		if j > len(pending) {
			j = len(pending)
		}
		batches = append(batches, pending[i:j])
	}
	result.Batches = len(batches)

	// 3) ejecutar en paralelo; una falla no corta el resto
	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(req.Parallelism)
	for _, batch := range batches {
		p.Go(func() {
			for _, item := range batch {
				res, err := s.resolver.Resolve(ctx, item.Kind, item.ExternalID)

				mu.Lock()
				switch {
				case err != nil:
					result.Failed++
				case res.State == StateResolvedFromFallback:
					result.Fallback++
				default:
					result.Refreshed++
				}
				mu.Unlock()
			}
		})
	}
	p.Wait()

	logging.Ctx(ctx).Info().
		Int("processed", result.Processed).
		Int("refreshed", result.Refreshed).
		Int("fallback", result.Fallback).
		Int("failed", result.Failed).
		Msg("[admin] refresco de media terminado")

	return result, nil
}
