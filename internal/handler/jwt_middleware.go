package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"mediacore/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "userId"
	CtxUserRole ctxKey = "role"
)

// nombre de la cookie de sesión
const sessionCookie = "jwt"

var errNoToken = errors.New("missing token")

// tokenFromRequest acepta "Authorization: Bearer <t>" o la cookie jwt.
func tokenFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if !strings.HasPrefix(h, "Bearer ") {
			return "", errors.New("invalid Authorization header")
		}
		return strings.TrimPrefix(h, "Bearer "), nil
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errNoToken
}

func parseToken(secret []byte, tokenStr string) (primitive.ObjectID, string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, "", errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return primitive.NilObjectID, "", errors.New("invalid sub in token")
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

func withUser(ctx context.Context, userID primitive.ObjectID, role string) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, userID)
	return context.WithValue(ctx, CtxUserRole, role)
}

// JWTAuth devuelve un middleware que valida el token JWT y
// mete userId y role en el contexto.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, err := tokenFromRequest(r)
			if err != nil {
				respondError(w, r, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			userID, role, err := parseToken(secretBytes, tokenStr)
			if err != nil {
				respondError(w, r, http.StatusUnauthorized, err.Error(), nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID, role)))
		})
	}
}

// OptionalJWTAuth es como JWTAuth pero deja pasar requests sin sesión
// (o con un token inválido) sin usuario en el contexto.
func OptionalJWTAuth(secret string) func(http.Handler) http.Handler {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr, err := tokenFromRequest(r); err == nil {
				if userID, role, err := parseToken(secretBytes, tokenStr); err == nil {
					r = r.WithContext(withUser(r.Context(), userID, role))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly solo deja pasar a role == "admin".
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(CtxUserRole).(string)
			if role != models.RoleAdmin {
				respondError(w, r, http.StatusForbidden, "admin only", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext devuelve el _id del usuario autenticado (zero si no hay).
func UserIDFromContext(ctx context.Context) primitive.ObjectID {
	id, _ := ctx.Value(CtxUserID).(primitive.ObjectID)
	return id
}

// optionalUserID es para rutas públicas que guardan historial si hay sesión.
func optionalUserID(ctx context.Context) *primitive.ObjectID {
	id := UserIDFromContext(ctx)
	if id.IsZero() {
		return nil
	}
	return &id
}
