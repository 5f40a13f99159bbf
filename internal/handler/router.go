package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig junta handlers y parámetros de middleware.
type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	// requests por minuto y por IP en /auth
	AuthRateLimit int

	Health      *HealthHandler
	Auth        *AuthHandler
	User        *UserHandler
	Media       *MediaHandler
	Person      *PersonHandler
	Recommend   *RecommendHandler
	Maintenance *AdminMaintenanceHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authMw := JWTAuth(cfg.JWTSecret)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", cfg.Health.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// ---- auth ----
	r.Route("/auth", func(r chi.Router) {
		if cfg.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.AuthRateLimit, time.Minute))
		}
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Get("/me", cfg.Auth.Me)
			r.Patch("/password/change", cfg.Auth.ChangePassword)
		})
	})

	// ---- media ----
	r.Route("/media", func(r chi.Router) {
		r.Get("/search", cfg.Media.Search)
		r.Get("/{kind}/trending", cfg.Media.Trending)
		r.Get("/{kind}/category/{category}", cfg.Media.Category)
		r.Get("/{kind}/{id}", cfg.Media.GetMedia)
	})
	r.Get("/person/{id}", cfg.Person.GetPerson)

	// ---- recomendaciones (sesión opcional: si hay, se guarda en el historial) ----
	r.Route("/recommender/{kind}", func(r chi.Router) {
		r.Use(OptionalJWTAuth(cfg.JWTSecret))
		r.Post("/similar", cfg.Recommend.Similar)
		r.Post("/discover", cfg.Recommend.Discover)
		r.Get("/{id}/similar", cfg.Recommend.SimilarTo)
		r.Post("/collaborative/item", cfg.Recommend.ItemBased)
		r.Post("/collaborative/user", cfg.Recommend.UserBased)
		r.Post("/hybrid/{mode}", cfg.Recommend.Hybrid)
		r.Get("/ws/discover", cfg.Recommend.DiscoverWS)
	})

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Route("/user", func(r chi.Router) {
			r.Get("/profile/view", cfg.User.ViewProfile)
			r.Patch("/profile/update", cfg.User.UpdateProfile)
			r.Delete("/profile/delete", cfg.User.DeleteProfile)
			r.Patch("/preferences/update", cfg.User.UpdatePreferences)
			r.Patch("/reviews/update", cfg.User.UpdateReviews)
			r.Get("/recommendations/history", cfg.Recommend.History)
		})

		// ---- solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(AdminOnly())
			MountAdminMaintenanceRoutes(r, cfg.Maintenance)
		})
	})

	return r
}
