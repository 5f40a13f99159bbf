package service

import (
	"context"
	"errors"
	"time"

	"mediacore/internal/catalog"
	"mediacore/internal/logging"
	"mediacore/internal/models"
	"mediacore/internal/normalizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PersonService struct {
	persons    PersonStore
	media      MediaStore
	catalog    PersonCatalog
	staleAfter time.Duration
	now        func() time.Time
}

func NewPersonService(persons PersonStore, media MediaStore, cat PersonCatalog, staleAfter time.Duration) *PersonService {
	if staleAfter <= 0 {
		staleAfter = models.DefaultStaleAfter
	}
	return &PersonService{
		persons:    persons,
		media:      media,
		catalog:    cat,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Get devuelve la persona con su filmografía resuelta. Sigue la misma regla
// que los items: si el refresco falla y hay algo guardado, se sirve eso.
func (s *PersonService) Get(ctx context.Context, externalID int) (*models.PersonView, error) {
	log := logging.Ctx(ctx).With().Int("person_id", externalID).Logger()

	cached, err := s.persons.FindByExternalID(ctx, externalID)
	if err != nil {
		log.Warn().Err(err).Msg("[person] lectura de cache falló, se trata como miss")
		cached = nil
	}
	if cached != nil && !cached.IsStale(s.now(), s.staleAfter) {
		return s.view(ctx, cached), nil
	}

	fallback := func(cause, terminal error) (*models.PersonView, error) {
		if cached != nil {
			log.Warn().Err(cause).Msg("[person] refresco falló, se sirve el registro guardado")
			return s.view(ctx, cached), nil
		}
		log.Warn().Err(cause).Msg("[person] refresco falló sin registro guardado")
		return nil, errors.Join(terminal, cause)
	}

	bundle := s.catalog.FetchPersonBundle(ctx, externalID)
	if bundle.NotFound() {
		return fallback(bundle.Err(), ErrNotFound)
	}
	if !bundle.Complete() {
		return fallback(bundle.Err(), ErrUpstreamUnavailable)
	}

	p, err := normalizer.PersonFromDetails(bundle.Details)
	if err != nil {
		return fallback(err, ErrUpstreamUnavailable)
	}

	p.MovieCredits = models.Filmography{
		Acting:    s.ensureRefs(ctx, models.KindMovie, normalizer.TopActing(bundle.MovieCredits, normalizer.MaxActingCredits)),
		Directing: s.ensureRefs(ctx, models.KindMovie, normalizer.Directing(bundle.MovieCredits)),
	}
	p.TVCredits = models.Filmography{
		Acting:    s.ensureRefs(ctx, models.KindSeries, normalizer.TopActing(bundle.TVCredits, normalizer.MaxActingCredits)),
		Directing: s.ensureRefs(ctx, models.KindSeries, normalizer.Directing(bundle.TVCredits)),
	}

	stored, err := s.persons.Upsert(ctx, p)
	if err != nil {
		return fallback(err, ErrUpstreamUnavailable)
	}
	return s.view(ctx, stored), nil
}

// ensureRefs crea (o reutiliza) un registro Partial por crédito y devuelve
// sus _id en el mismo orden. Los que fallan se omiten.
func (s *PersonService) ensureRefs(ctx context.Context, kind models.MediaKind, credits []catalog.PersonCredit) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(credits))
	seen := make(map[int]bool, len(credits))

	for _, c := range credits {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		stub, ok := normalizer.StubFromPersonCredit(kind, c)
		if !ok {
			continue
		}
		rec, err := s.media.EnsurePartial(ctx, stub)
		if err != nil || rec == nil {
			logging.Ctx(ctx).Warn().Err(err).Int("tmdb_id", c.ID).Msg("[person] no se pudo crear la referencia")
			continue
		}
		out = append(out, rec.ID)
	}
	return out
}

// view resuelve las cuatro listas de referencias con una sola consulta y
// las reordena según el orden guardado.
func (s *PersonService) view(ctx context.Context, p *models.PersonRecord) *models.PersonView {
	v := &models.PersonView{
		PersonRecord: p,
		MovieCredits: models.ResolvedFilmography{Acting: []models.MediaRecord{}, Directing: []models.MediaRecord{}},
		TVCredits:    models.ResolvedFilmography{Acting: []models.MediaRecord{}, Directing: []models.MediaRecord{}},
	}

	var ids []primitive.ObjectID
	ids = append(ids, p.MovieCredits.Acting...)
	ids = append(ids, p.MovieCredits.Directing...)
	ids = append(ids, p.TVCredits.Acting...)
	ids = append(ids, p.TVCredits.Directing...)
	if len(ids) == 0 {
		return v
	}

	docs, err := s.media.FindByInternalIDs(ctx, ids)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("person_id", p.ExternalID).Msg("[person] no se pudo resolver la filmografía")
		return v
	}

	v.MovieCredits.Acting = inOrder(p.MovieCredits.Acting, docs)
	v.MovieCredits.Directing = inOrder(p.MovieCredits.Directing, docs)
	v.TVCredits.Acting = inOrder(p.TVCredits.Acting, docs)
	v.TVCredits.Directing = inOrder(p.TVCredits.Directing, docs)
	return v
}

// inOrder reordena docs según refs; las referencias sin documento se omiten.
func inOrder(refs []primitive.ObjectID, docs []models.MediaRecord) []models.MediaRecord {
	byID := make(map[primitive.ObjectID]*models.MediaRecord, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}
	out := make([]models.MediaRecord, 0, len(refs))
	for _, id := range refs {
		if d, ok := byID[id]; ok {
			out = append(out, *d)
		}
	}
	return out
}
