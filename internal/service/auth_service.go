package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediacore/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

type AuthService struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	cost      int
}

type RegisterUserData struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Gender      string
	DateOfBirth *time.Time
}

func NewAuthService(users UserStore, secret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{users: users, jwtSecret: []byte(secret), tokenTTL: tokenTTL, cost: bcrypt.DefaultCost}
}

// ================== REGISTER & LOGIN ==================

// Register crea un usuario nuevo con role "user". username y email son únicos;
// el email se guarda en minúsculas.
func (s *AuthService) Register(ctx context.Context, data RegisterUserData) (*models.UserDoc, error) {
	username := strings.TrimSpace(data.Username)
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username y email son obligatorios", ErrInvalidInput)
	}
	if len(data.Password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", ErrInvalidInput, MinPasswordLen)
	}

	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), s.cost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.UserDoc{
		Info: models.UserInfo{
			Username:     username,
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			Email:        email,
			PasswordHash: string(hash),
			Gender:       data.Gender,
			DateOfBirth:  data.DateOfBirth,
		},
		Preferences: emptyPreferences(),
		Role:        models.RoleUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func emptyPreferences() models.UserPreferences {
	return models.UserPreferences{
		Languages:      []string{},
		Genres:         []string{},
		FavoriteMovies: []primitive.ObjectID{},
		FavoriteSeries: []primitive.ObjectID{},
		Watchlist:      []primitive.ObjectID{},
	}
}

// Login valida username + password y firma el JWT (sub = _id hex).
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.UserDoc, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Info.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *AuthService) IssueToken(u *models.UserDoc) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.ID.Hex(),
		"role": u.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

// ================== SESIÓN ==================

func (s *AuthService) Me(ctx context.Context, userID primitive.ObjectID) (*models.UserDoc, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword exige la contraseña actual y que la nueva sea distinta.
func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Info.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}
	if len(newPassword) < MinPasswordLen {
		return fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", ErrInvalidInput, MinPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	return s.users.UpdateByID(ctx, userID, bson.M{
		"info.password": string(hash),
		"updatedAt":     time.Now().UTC(),
	})
}
