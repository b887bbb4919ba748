package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kotoba-tutor/internal/config"
	"kotoba-tutor/internal/handler"
	"kotoba-tutor/internal/llm"
	"kotoba-tutor/internal/middleware"
	"kotoba-tutor/internal/observability"
	"kotoba-tutor/internal/repository/postgres"
	"kotoba-tutor/internal/service"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting tutor server")

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()

	db, err := config.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(connCtx); err != nil {
		slog.Error("database ping failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("connected to postgresql")

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer migrateCancel()

	if err := postgres.RunMigrations(migrateCtx, db); err != nil {
		slog.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("migrations applied")

	poolCtx, poolCancel := context.WithCancel(context.Background())
	defer poolCancel()
	go samplePoolStats(poolCtx, db)

	tm := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	lessonRepo := postgres.NewLessonRepository(db, tm)
	progressRepo := postgres.NewProgressRepository(db, tm)
	vocabRepo := postgres.NewVocabularyRepository(db, tm)

	llmClient := llm.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)

	secret := []byte(cfg.JWTSecret)

	authService := service.NewAuthService(userRepo, secret)
	chatService := service.NewChatService(llmClient, cfg.ChatModel)
	lessonService := service.NewLessonService(lessonRepo, progressRepo, llmClient, cfg.LessonModel)
	vocabService := service.NewVocabularyService(vocabRepo, llmClient, cfg.HelperModel)
	statsService := service.NewStatsService(userRepo, progressRepo, vocabRepo)

	authHandler := handler.NewAuthHandler(authService, secret, cfg.IsProduction())
	chatHandler := handler.NewChatHandler(chatService)
	lessonHandler := handler.NewLessonHandler(lessonService)
	vocabHandler := handler.NewVocabularyHandler(vocabService)
	statsHandler := handler.NewStatsHandler(statsService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(db, cfg.OpenAIAPIKey != ""))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		authLimiter := middleware.NewRateLimiter(5, 10)
		apiLimiter := middleware.NewRateLimiter(20, 50)
		llmLimiter := middleware.NewRateLimiter(2, 5)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/session", authHandler.Session)
		})

		// Seeded lessons and the vocabulary browser are readable without a
		// session. OptionalAuth still resolves the cookie when one is
		// present so logged-in callers see their own AI lessons and get
		// progress attached.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(secret))
			r.Use(apiLimiter.Middleware())
			r.Get("/lessons", lessonHandler.List)
			r.Get("/lessons/{id}", lessonHandler.Get)
			r.Get("/vocabulary", vocabHandler.List)
			r.Get("/vocabulary/{id}", vocabHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(secret))
			r.Use(apiLimiter.Middleware())

			r.Post("/lessons/{id}/progress", lessonHandler.UpdateProgress)
			r.Delete("/lessons/{id}", lessonHandler.Delete)
			r.Post("/vocabulary", vocabHandler.Create)
			r.Put("/vocabulary/{id}", vocabHandler.Update)
			r.Delete("/vocabulary/{id}", vocabHandler.Delete)
			r.Get("/users/stats", statsHandler.GetStats)
		})

		// Completion-backed endpoints get a tighter limit; each request can
		// hold an upstream stream open for a while.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(secret))
			r.Use(llmLimiter.Middleware())

			r.Post("/chat", chatHandler.Chat)
			r.Post("/lessons/generate", lessonHandler.Generate)
			r.Post("/vocabulary/ai-helper", vocabHandler.AIHelper)
		})
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Write timeout must cover a full completion stream, not a single
		// response write.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("tutor server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("server stopped gracefully")
}

// samplePoolStats exports connection pool gauges until ctx is cancelled.
func samplePoolStats(ctx context.Context, db *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			observability.DBConnectionsOpen.Set(float64(stats.OpenConnections))
		}
	}
}
