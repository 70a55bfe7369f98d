package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/velmuzhov/photosite/internal/config"
	"github.com/velmuzhov/photosite/internal/domain/category"
	"github.com/velmuzhov/photosite/internal/domain/event"
	"github.com/velmuzhov/photosite/internal/domain/picture"
	"github.com/velmuzhov/photosite/internal/domain/user"
	"github.com/velmuzhov/photosite/internal/middleware"
	"github.com/velmuzhov/photosite/internal/pkg/cache"
	"github.com/velmuzhov/photosite/internal/pkg/database"
	"github.com/velmuzhov/photosite/internal/pkg/imaging"
	"github.com/velmuzhov/photosite/internal/pkg/jwt"
	"github.com/velmuzhov/photosite/internal/pkg/response"
	"github.com/velmuzhov/photosite/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting photosite API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	store, err := storage.NewLocalStore(cfg.MediaRoot)
	if err != nil {
		log.Fatal().Err(err).Str("root", cfg.MediaRoot).Msg("Failed to prepare media root")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	thumbs := imaging.NewProcessor(imaging.Config{
		Width:   cfg.ThumbWidth,
		Height:  cfg.ThumbHeight,
		Quality: cfg.ThumbQuality,
	})
	responseCache := cache.New(redis, "photosite", cfg.CacheTTL)

	// ---------- Repositories ----------
	categoryRepo := category.NewRepository(db)
	pictureRepo := picture.NewRepository(db)
	eventRepo := event.NewRepository(db)
	userRepo := user.NewRepository(db)

	// ---------- Services ----------
	eventService := event.NewService(eventRepo, categoryRepo, pictureRepo, store, thumbs, responseCache, cfg.PageLimit)
	userService := user.NewService(userRepo, jwtService)

	// ---------- Handlers ----------
	eventHandler := event.NewHandler(eventService)
	userHandler := user.NewHandler(userService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/events", eventHandler.Routes(authMiddleware))
		r.Mount("/pictures", eventHandler.PictureRoutes(authMiddleware))
		r.Mount("/users", userHandler.Routes(authMiddleware))
	})

	// Originals, thumbnails, and covers are served straight off the media
	// root; the API only manages them.
	fileServer := http.StripPrefix("/static/", http.FileServer(http.Dir(store.Root())))
	r.Get("/static/*", fileServer.ServeHTTP)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
