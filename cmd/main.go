package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"cinepulse-recommendation-service/internal/config"
	"cinepulse-recommendation-service/internal/database"
	"cinepulse-recommendation-service/internal/gemini"
	"cinepulse-recommendation-service/internal/handler"
	"cinepulse-recommendation-service/internal/middleware"
	"cinepulse-recommendation-service/internal/repository"
	"cinepulse-recommendation-service/internal/research"
	"cinepulse-recommendation-service/internal/service"
	"cinepulse-recommendation-service/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	policy, err := service.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		slog.Error("failed to load policy", "file", cfg.PolicyFile, "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	var rdb *redis.Client
	if client, err := database.NewRedis(cfg.Redis); err != nil {
		slog.Warn("Redis unavailable, running without cache", "error", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	// Initialize layers
	movieRepo := repository.NewMovieRepository(db)
	recRepo := repository.NewRecommendationRepository(db)
	movieSvc := service.NewMovieService(movieRepo, rdb, cfg.CacheTTL)

	var (
		enricher  service.Enricher
		generator service.Generator
	)
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})
	if geminiClient.Enabled() {
		enricher = geminiClient
		generator = geminiClient
	} else {
		slog.Info("GOOGLE_API_KEY not set, explanations use templates and chat is disabled")
	}

	recSvc := service.NewRecommendationService(service.RecommendationConfig{
		Policy: policy,
		Weights: service.Weights{
			Emotion:     cfg.Scoring.EmotionWeight,
			Intent:      cfg.Scoring.IntentWeight,
			Arc:         cfg.Scoring.ArcWeight,
			Context:     cfg.Scoring.ContextWeight,
			Personality: cfg.Scoring.PersonalityWeight,
		},
		DefaultMaxRuntime:  cfg.Scoring.DefaultMaxRuntime,
		TopN:               cfg.Scoring.TopN,
		FallbackSampleSize: cfg.Scoring.FallbackSampleSize,
		EnrichmentTimeout:  cfg.Gemini.Timeout,
	}, movieSvc, enricher, recRepo)

	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
	researcher := research.NewDefault(research.Settings{
		SerpAPIKey:     cfg.Research.SerpAPIKey,
		WikiBaseURL:    cfg.Research.WikiBaseURL,
		RequestsPerSec: cfg.Research.RequestsPerSec,
	}, tmdbClient, movieSvc)
	slog.Info("research providers ready", "order", researcher.Order())
	chatSvc := service.NewChatService(generator, tmdbClient)

	recHandler := handler.NewRecommendationHandler(recSvc)
	movieHandler := handler.NewMovieHandler(movieSvc)
	researchHandler := handler.NewResearchHandler(researcher)
	chatHandler := handler.NewChatHandler(chatSvc)

	recommendLimit := middleware.NewRateLimiter(rdb, "recommend", cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds)
	researchLimit := middleware.NewRateLimiter(rdb, "research", cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds)
	chatLimit := middleware.NewRateLimiter(rdb, "chat", cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds)

	// Load swagger spec
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger spec not found, swagger UI will be unavailable", "error", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "cinepulse-recommendation-service",
		ServerHeader: "cinepulse-recommendation-service",
		ErrorHandler: handler.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger
	if swaggerYAML != nil {
		handler.RegisterSwagger(app, "CinePulse", swaggerYAML)
	}

	// Routes
	app.Get("/health", recHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Post("/recommend", recommendLimit.Handler(), recHandler.Recommend)
	api.Get("/recommendations/:request_id", recHandler.GetSnapshots)
	api.Get("/policy", recHandler.GetPolicy)
	api.Post("/research", researchLimit.Handler(), researchHandler.Research)
	api.Post("/chat", chatLimit.Handler(), chatHandler.Chat)
	api.Get("/movies", movieHandler.ListMovies)
	api.Get("/movies/:id", movieHandler.GetMovie)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("cinepulse-recommendation-service starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down cinepulse-recommendation-service")
	_ = app.Shutdown()
	recSvc.Wait()
}
