package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/models"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// RefResolver convierte {tmdbId, mediaType} en un registro guardado.
type RefResolver interface {
	ResolveRef(ctx context.Context, ref models.MediaRef) (*models.MediaRecord, error)
}

type UserService struct {
	users    UserStore
	reviews  ReviewStore
	media    MediaStore
	refs     RefResolver
	validate *validator.Validate
}

func NewUserService(users UserStore, reviews ReviewStore, media MediaStore, refs RefResolver) *UserService {
	return &UserService{
		users:    users,
		reviews:  reviews,
		media:    media,
		refs:     refs,
		validate: validator.New(),
	}
}

type ProfileUpdate struct {
	FirstName   *string    `json:"firstName" validate:"omitempty,max=100"`
	LastName    *string    `json:"lastName" validate:"omitempty,max=100"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Gender      *string    `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Avatar      *string    `json:"avatar" validate:"omitempty,url"`
}

// PreferencesUpdate reemplaza cada lista que venga informada.
type PreferencesUpdate struct {
	Languages      *[]string          `json:"languages"`
	Genres         *[]string          `json:"genres"`
	FavoriteMovies *[]models.MediaRef `json:"favoriteMovies" validate:"omitempty,dive"`
	FavoriteSeries *[]models.MediaRef `json:"favoriteSeries" validate:"omitempty,dive"`
	Watchlist      *[]models.MediaRef `json:"watchlist" validate:"omitempty,dive"`
}

func (s *UserService) load(ctx context.Context, userID primitive.ObjectID) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ================== PERFIL ==================

// Profile devuelve el perfil con las preferencias resueltas (en el orden
// guardado) y las reseñas del usuario.
func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.resolvePreferences(ctx, u.Preferences)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	return &models.UserProfile{
		ID:          u.ID,
		Info:        u.Info,
		Role:        u.Role,
		Preferences: *prefs,
		Reviews:     reviews,
		CreatedAt:   u.CreatedAt,
	}, nil
}

func (s *UserService) resolvePreferences(ctx context.Context, p models.UserPreferences) (*models.ResolvedPreferences, error) {
	out := &models.ResolvedPreferences{
		Languages:      nonNilStrings(p.Languages),
		Genres:         nonNilStrings(p.Genres),
		FavoriteMovies: []models.MediaRecord{},
		FavoriteSeries: []models.MediaRecord{},
		Watchlist:      []models.MediaRecord{},
	}

	var ids []primitive.ObjectID
	ids = append(ids, p.FavoriteMovies...)
	ids = append(ids, p.FavoriteSeries...)
	ids = append(ids, p.Watchlist...)
	if len(ids) == 0 {
		return out, nil
	}

	docs, err := s.media.FindByInternalIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out.FavoriteMovies = inOrder(p.FavoriteMovies, docs)
	out.FavoriteSeries = inOrder(p.FavoriteSeries, docs)
	out.Watchlist = inOrder(p.Watchlist, docs)
	return out, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*models.UserDoc, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	update := bson.M{}
	if in.FirstName != nil {
		update["info.firstName"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		update["info.lastName"] = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != userID {
			return nil, ErrEmailTaken
		}
		update["info.email"] = email
	}
	if in.DateOfBirth != nil {
		update["info.dateOfBirth"] = in.DateOfBirth.UTC()
	}
	if in.Location != nil {
		update["info.location"] = *in.Location
	}
	if in.Gender != nil {
		update["info.gender"] = *in.Gender
	}
	if in.Avatar != nil {
		update["info.avatar"] = *in.Avatar
	}

	if len(update) == 0 {
		return nil, fmt.Errorf("%w: no hay campos para actualizar", ErrInvalidInput)
	}
	update["updatedAt"] = time.Now().UTC()

	if err := s.users.UpdateByID(ctx, userID, update); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.load(ctx, userID)
}

// DeleteProfile borra al usuario y sus reseñas.
func (s *UserService) DeleteProfile(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}
	n, err := s.reviews.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.DeleteByID(ctx, userID); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("user_id", userID.Hex()).Int64("reviews", n).Msg("[user] cuenta eliminada")
	return nil
}

// ================== PREFERENCIAS ==================

func (s *UserService) UpdatePreferences(ctx context.Context, userID primitive.ObjectID, in PreferencesUpdate) (*models.ResolvedPreferences, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	prefs := u.Preferences

	update := bson.M{}
	if in.Languages != nil {
		prefs.Languages = dedupStrings(*in.Languages)
		update["preferences.languages"] = prefs.Languages
	}
	if in.Genres != nil {
		prefs.Genres = dedupStrings(*in.Genres)
		update["preferences.genres"] = prefs.Genres
	}
	if in.FavoriteMovies != nil {
		prefs.FavoriteMovies = s.refIDs(ctx, *in.FavoriteMovies)
		update["preferences.favoriteMovies"] = prefs.FavoriteMovies
	}
	if in.FavoriteSeries != nil {
		prefs.FavoriteSeries = s.refIDs(ctx, *in.FavoriteSeries)
		update["preferences.favoriteSeries"] = prefs.FavoriteSeries
	}
	if in.Watchlist != nil {
		prefs.Watchlist = s.refIDs(ctx, *in.Watchlist)
		update["preferences.watchlist"] = prefs.Watchlist
	}

	if len(update) == 0 {
		return nil, fmt.Errorf("%w: no hay preferencias para actualizar", ErrInvalidInput)
	}
	update["updatedAt"] = time.Now().UTC()

	if err := s.users.UpdateByID(ctx, userID, update); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.resolvePreferences(ctx, prefs)
}

// refIDs resuelve las referencias a _id; las que no se pueden resolver se omiten.
func (s *UserService) refIDs(ctx context.Context, refs []models.MediaRef) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(refs))
	seen := map[primitive.ObjectID]bool{}
	for _, ref := range refs {
		rec, err := s.refs.ResolveRef(ctx, ref)
		if err != nil || rec == nil || rec.ID.IsZero() {
			logging.Ctx(ctx).Warn().Err(err).Int("tmdb_id", ref.ExternalID).Msg("[user] referencia de media omitida")
			continue
		}
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		out = append(out, rec.ID)
	}
	return out
}

func dedupStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ================== RESEÑAS ==================

// UpdateReviews agrega y borra reseñas del usuario. Las entradas inválidas
// (o cuyo media no se puede resolver) se saltean y se cuentan en Skipped.
func (s *UserService) UpdateReviews(ctx context.Context, userID primitive.ObjectID, in models.ReviewsUpdate) (*models.ReviewsUpdateResult, error) {
	if len(in.Add) == 0 && len(in.Remove) == 0 {
		return nil, fmt.Errorf("%w: add y remove vacíos", ErrInvalidReview)
	}
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	out := &models.ReviewsUpdateResult{Added: []models.Review{}}

	for _, item := range in.Add {
		rv, err := s.addReview(ctx, userID, item)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Int("tmdb_id", item.TMDBID).Msg("[user] reseña omitida")
			out.Skipped++
			continue
		}
		out.Added = append(out.Added, *rv)
	}

	if len(in.Remove) > 0 {
		ids := make([]primitive.ObjectID, 0, len(in.Remove))
		for _, hex := range in.Remove {
			id, err := primitive.ObjectIDFromHex(hex)
			if err != nil {
				out.Skipped++
				continue
			}
			ids = append(ids, id)
		}
		n, err := s.reviews.DeleteForUser(ctx, userID, ids)
		if err != nil {
			return nil, err
		}
		out.Removed = n
	}

	return out, nil
}

func (s *UserService) addReview(ctx context.Context, userID primitive.ObjectID, in models.ReviewInput) (*models.Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}
	rec, err := s.refs.ResolveRef(ctx, models.MediaRef{ExternalID: in.TMDBID, MediaType: in.MediaType})
	if err != nil {
		return nil, err
	}

	rv := &models.Review{
		UserID:     userID,
		MediaID:    rec.ID,
		ExternalID: rec.ExternalID,
		Kind:       rec.Kind,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.reviews.Insert(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}
