package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediacore/docs" // swagger docs
	"mediacore/internal/cache"
	"mediacore/internal/catalog"
	"mediacore/internal/config"
	"mediacore/internal/db"
	"mediacore/internal/handler"
	"mediacore/internal/logging"
	"mediacore/internal/recommender"
	"mediacore/internal/repository"
	"mediacore/internal/service"
)

// @title MediaCore API
// @version 1.0
// @description Catálogo de películas y series con cache en Mongo, recomendaciones y cuentas de usuario
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("[config] configuración inválida")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Mongo es obligatorio
	mongoClient, database, err := db.Connect(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("[mongo] no se pudo conectar")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logging.Fatal().Err(err).Msg("[mongo] no se pudieron crear los índices")
	}

	// Redis es opcional: sin él no hay cache de listas ni de candidatos
	var redisPinger handler.Pinger
	redisCache, err := cache.Connect(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("[redis] sin cache, se sigue sin Redis")
		redisCache = cache.New(nil)
	} else {
		redisPinger = redisCache
		defer redisCache.Close()
	}

	// repos
	mediaRepo := repository.NewMediaRepository(database)
	personRepo := repository.NewPersonRepository(database)
	userRepo := repository.NewUserRepository(database)
	reviewRepo := repository.NewReviewRepository(database)
	recRepo := repository.NewRecommendationRepository(database)

	// clientes externos
	catalogClient := catalog.NewClient(catalog.Config{
		BaseURL:    cfg.TMDBBaseURL,
		APIKey:     cfg.TMDBAPIKey,
		Language:   cfg.TMDBLanguage,
		Timeout:    cfg.TMDBTimeout,
		MaxRetries: cfg.TMDBMaxRetries,
		RetryDelay: cfg.TMDBRetryDelay,
	})
	recClient := recommender.NewClient(recommender.Config{
		BaseURL: cfg.RecommenderBaseURL,
		Timeout: cfg.RecommenderTimeout,
		Timeouts: map[recommender.Strategy]time.Duration{
			recommender.ContentSimilar:  cfg.RecommenderSimilarTimeout,
			recommender.ContentDiscover: cfg.RecommenderDiscoverTimeout,
		},
	})

	// services
	mediaSvc := service.NewMediaService(mediaRepo, catalogClient, reviewRepo, cfg.MediaStaleAfter)
	personSvc := service.NewPersonService(personRepo, mediaRepo, catalogClient, cfg.MediaStaleAfter)
	discoverySvc := service.NewDiscoveryService(catalogClient, mediaRepo, redisCache, cfg.ListCacheTTL)
	recSvc := service.NewRecommendService(recClient, mediaSvc, recRepo, redisCache, cfg.RecommenderMaxBatch)
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	userSvc := service.NewUserService(userRepo, reviewRepo, mediaRepo, mediaSvc)
	adminMaintSvc := service.NewAdminMaintenanceService(mediaRepo, mediaSvc, cfg.MediaStaleAfter)

	// handlers
	router := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:  cfg.RateLimitRPM,

		Health: handler.NewHealthHandler(handler.PingFunc(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		}), redisPinger),
		Auth:        handler.NewAuthHandler(authSvc, handler.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}),
		User:        handler.NewUserHandler(userSvc),
		Media:       handler.NewMediaHandler(mediaSvc, discoverySvc),
		Person:      handler.NewPersonHandler(personSvc),
		Recommend:   handler.NewRecommendHandler(recSvc),
		Maintenance: handler.NewAdminMaintenanceHandler(adminMaintSvc),
	})

	docs.SwaggerInfo.Host = "localhost:" + cfg.HTTPPort

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.HTTPPort).Str("env", cfg.AppEnv).Msg("[http] escuchando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("[http] el servidor se cayó")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("[http] apagando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[http] shutdown incompleto")
	}
}
