package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"cinepulse-recommendation-service/internal/config"
)

// NewPostgres opens the catalog database and runs migrations.
func NewPostgres(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)

	slog.Info("connected to PostgreSQL", "db", cfg.DBName)

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id SERIAL PRIMARY KEY,
			tmdb_id INTEGER UNIQUE,
			title VARCHAR(255) NOT NULL,
			content_type VARCHAR(20) NOT NULL DEFAULT 'movie'
				CHECK (content_type IN ('movie', 'series')),
			overview TEXT NOT NULL DEFAULT '',
			release_year INTEGER,
			runtime INTEGER CHECK (runtime IS NULL OR runtime > 0),
			genres TEXT[] NOT NULL DEFAULT '{}',
			emotional_arc TEXT[] NOT NULL CHECK (cardinality(emotional_arc) > 0),
			ending_type VARCHAR(20) NOT NULL
				CHECK (ending_type IN ('hopeful', 'neutral', 'bittersweet')),
			pace VARCHAR(20) NOT NULL CHECK (pace IN ('slow', 'medium', 'fast')),
			tone VARCHAR(20) NOT NULL CHECK (tone IN ('uplifting', 'heavy', 'neutral')),
			trailer_url TEXT,
			backdrop_url TEXT,
			streaming_platforms JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_snapshots (
			id SERIAL PRIMARY KEY,
			request_id UUID NOT NULL,
			mood VARCHAR(64) NOT NULL,
			movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			score DOUBLE PRECISION NOT NULL,
			fallback BOOLEAN NOT NULL DEFAULT FALSE,
			generated_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(request_id, movie_id)
		)`,
		// Indexes for the constraint filters
		`CREATE INDEX IF NOT EXISTS idx_movies_tone ON movies(tone)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_pace ON movies(pace)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_runtime ON movies(runtime)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_title_lower ON movies(lower(title))`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_request_id ON recommendation_snapshots(request_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Info("database migrations completed")
	return nil
}
