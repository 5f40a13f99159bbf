package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type UserInfo struct {
	Username     string     `json:"username" bson:"username"`
	FirstName    string     `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty" bson:"lastName,omitempty"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Gender       string     `json:"gender,omitempty" bson:"gender,omitempty"`
	Location     string     `json:"location,omitempty" bson:"location,omitempty"`
	Avatar       string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

type UserPreferences struct {
	Languages      []string             `json:"languages" bson:"languages"`
	Genres         []string             `json:"genres" bson:"genres"`
	FavoriteMovies []primitive.ObjectID `json:"favoriteMovies" bson:"favoriteMovies"`
	FavoriteSeries []primitive.ObjectID `json:"favoriteSeries" bson:"favoriteSeries"`
	Watchlist      []primitive.ObjectID `json:"watchlist" bson:"watchlist"`
}

type UserDoc struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Info        UserInfo           `json:"info" bson:"info"`
	Preferences UserPreferences    `json:"preferences" bson:"preferences"`
	Role        string             `json:"role" bson:"role"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ResolvedPreferences reemplaza los _id por los documentos de media.
type ResolvedPreferences struct {
	Languages      []string      `json:"languages"`
	Genres         []string      `json:"genres"`
	FavoriteMovies []MediaRecord `json:"favoriteMovies"`
	FavoriteSeries []MediaRecord `json:"favoriteSeries"`
	Watchlist      []MediaRecord `json:"watchlist"`
}

// UserProfile es la respuesta de /user/profile/view.
type UserProfile struct {
	ID          primitive.ObjectID  `json:"id"`
	Info        UserInfo            `json:"info"`
	Role        string              `json:"role"`
	Preferences ResolvedPreferences `json:"preferences"`
	Reviews     []Review            `json:"reviews"`
	CreatedAt   time.Time           `json:"createdAt"`
}
