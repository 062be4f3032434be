package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the recommendation service.
type Config struct {
	DB         DBConfig
	Redis      RedisConfig
	Scoring    ScoringConfig
	Gemini     GeminiConfig
	TMDB       TMDBConfig
	Research   ResearchConfig
	RateLimit  RateLimitConfig
	Port       string
	LogLevel   string
	PolicyFile string
	CacheTTL   time.Duration
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ScoringConfig holds the alignment weights and pipeline limits.
// Only the emotion and intent weights contribute to the score; the rest are
// reported by the policy endpoint.
type ScoringConfig struct {
	EmotionWeight      float64
	IntentWeight       float64
	ArcWeight          float64
	ContextWeight      float64
	PersonalityWeight  float64
	DefaultMaxRuntime  int
	TopN               int
	FallbackSampleSize int
}

// GeminiConfig holds the generative text API configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey  string
	BaseURL string
}

// ResearchConfig holds settings for the title discovery providers.
type ResearchConfig struct {
	SerpAPIKey     string
	WikiBaseURL    string
	RequestsPerSec float64
}

// RateLimitConfig holds the per-IP request limits.
type RateLimitConfig struct {
	Max           int
	WindowSeconds int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "cinepulse"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Scoring: ScoringConfig{
			EmotionWeight:      getEnvFloat("EMOTION_WEIGHT", 0.30),
			IntentWeight:       getEnvFloat("INTENT_WEIGHT", 0.25),
			ArcWeight:          getEnvFloat("ARC_WEIGHT", 0.20),
			ContextWeight:      getEnvFloat("CONTEXT_WEIGHT", 0.15),
			PersonalityWeight:  getEnvFloat("PERSONALITY_WEIGHT", 0.10),
			DefaultMaxRuntime:  getEnvInt("DEFAULT_MAX_RUNTIME", 180),
			TopN:               getEnvInt("RECOMMENDATION_TOP_N", 3),
			FallbackSampleSize: getEnvInt("FALLBACK_SAMPLE_SIZE", 20),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GOOGLE_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 8*time.Second),
		},
		TMDB: TMDBConfig{
			APIKey:  getEnv("TMDB_API_KEY", ""),
			BaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		},
		Research: ResearchConfig{
			SerpAPIKey:     getEnv("SERPAPI_API_KEY", ""),
			WikiBaseURL:    getEnv("WIKI_BASE_URL", "https://en.wikipedia.org/wiki"),
			RequestsPerSec: getEnvFloat("RESEARCH_REQUESTS_PER_SEC", 2),
		},
		RateLimit: RateLimitConfig{
			Max:           getEnvInt("RATE_LIMIT_MAX", 60),
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Port:       getEnv("SERVER_PORT", "8000"),
		LogLevel:   strings.ToLower(getEnv("LOG_LEVEL", "info")),
		PolicyFile: getEnv("POLICY_FILE", ""),
		CacheTTL:   getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Scoring.EmotionWeight < 0 || c.Scoring.IntentWeight < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if c.Scoring.DefaultMaxRuntime <= 0 {
		return fmt.Errorf("DEFAULT_MAX_RUNTIME must be positive, got %d", c.Scoring.DefaultMaxRuntime)
	}
	if c.Scoring.TopN <= 0 {
		return fmt.Errorf("RECOMMENDATION_TOP_N must be positive, got %d", c.Scoring.TopN)
	}
	if c.Scoring.FallbackSampleSize <= 0 {
		return fmt.Errorf("FALLBACK_SAMPLE_SIZE must be positive, got %d", c.Scoring.FallbackSampleSize)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
