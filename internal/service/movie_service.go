package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"cinepulse-recommendation-service/internal/metrics"
	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/repository"
)

const (
	catalogQueryKeyPrefix = "catalog:query:"
	movieDetailKeyPrefix  = "movie:"
	movieDetailCacheTTL   = 30 * time.Minute
	defaultListLimit      = 50
	maxListLimit          = 200
)

// MovieStore is the persistence contract for catalog entries.
type MovieStore interface {
	Query(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error)
	Sample(ctx context.Context, limit int) ([]models.Movie, error)
	GetByID(ctx context.Context, id int) (*models.Movie, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	Insert(ctx context.Context, m *models.Movie) error
	DeleteAll(ctx context.Context) (int64, error)
	MissingRuntimes(ctx context.Context) ([]repository.RuntimeGap, error)
	UpdateRuntime(ctx context.Context, id, runtime int) error
}

// RuntimeLookup resolves a runtime in minutes for a TMDB id.
type RuntimeLookup interface {
	Runtime(ctx context.Context, tmdbID int) (int, error)
}

// SeedResult summarises a bulk catalog load.
type SeedResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
	Invalid int `json:"invalid"`
}

// MovieService handles catalog reads with a Redis read-through cache and the
// administrative writes that populate the catalog.
type MovieService struct {
	repo  MovieStore
	redis *redis.Client
	ttl   time.Duration
}

// NewMovieService creates a new MovieService. rdb may be nil, in which case
// every read goes to the store.
func NewMovieService(repo MovieStore, rdb *redis.Client, ttl time.Duration) *MovieService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MovieService{repo: repo, redis: rdb, ttl: ttl}
}

// Query returns every catalog entry satisfying the filter.
func (s *MovieService) Query(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error) {
	cacheKey := catalogQueryKeyPrefix + filter.CacheKey()

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var movies []models.Movie
		if json.Unmarshal([]byte(cached), &movies) == nil {
			metrics.RecordCacheLookup(true)
			slog.Debug("cache hit", "key", cacheKey)
			return movies, nil
		}
	}
	metrics.RecordCacheLookup(false)

	movies, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}

	if data, err := json.Marshal(movies); err == nil {
		s.setCache(ctx, cacheKey, string(data), s.ttl)
	}
	return movies, nil
}

// Sample returns up to limit entries. Samples are random and never cached.
func (s *MovieService) Sample(ctx context.Context, limit int) ([]models.Movie, error) {
	movies, err := s.repo.Sample(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample catalog: %w", err)
	}
	return movies, nil
}

// ListMovies returns catalog entries matching the optional filter, capped at
// a page limit.
func (s *MovieService) ListMovies(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	return s.Query(ctx, filter)
}

// GetMovie returns a single catalog entry.
func (s *MovieService) GetMovie(ctx context.Context, id int) (*models.Movie, error) {
	cacheKey := fmt.Sprintf("%s%d", movieDetailKeyPrefix, id)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		var movie models.Movie
		if json.Unmarshal([]byte(cached), &movie) == nil {
			slog.Debug("cache hit", "key", cacheKey)
			return &movie, nil
		}
	}

	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	if data, err := json.Marshal(movie); err == nil {
		s.setCache(ctx, cacheKey, string(data), movieDetailCacheTTL)
	}
	return movie, nil
}

// Exists reports whether a title is already catalogued.
func (s *MovieService) Exists(ctx context.Context, title string) (bool, error) {
	return s.repo.ExistsByTitle(ctx, title)
}

// AddMovie validates and stores a new entry, then drops cached queries.
func (s *MovieService) AddMovie(ctx context.Context, m *models.Movie) error {
	m.Normalize()
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return fmt.Errorf("failed to add movie: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Seed loads entries that are not yet catalogued. Invalid entries are
// logged and skipped.
func (s *MovieService) Seed(ctx context.Context, movies []models.Movie) (SeedResult, error) {
	var result SeedResult
	for i := range movies {
		m := movies[i]
		m.Normalize()
		if err := m.Validate(); err != nil {
			slog.Warn("skipping invalid seed entry", "title", m.Title, "error", err)
			result.Invalid++
			continue
		}

		exists, err := s.repo.ExistsByTitle(ctx, m.Title)
		if err != nil {
			return result, fmt.Errorf("failed to check %q: %w", m.Title, err)
		}
		if exists {
			result.Skipped++
			continue
		}
		if err := s.repo.Insert(ctx, &m); err != nil {
			return result, fmt.Errorf("failed to seed %q: %w", m.Title, err)
		}
		result.Added++
	}

	if result.Added > 0 {
		s.invalidateCache(ctx)
	}
	slog.Info("catalog seeded", "added", result.Added, "skipped", result.Skipped, "invalid", result.Invalid)
	return result, nil
}

// Reset deletes every catalog entry.
func (s *MovieService) Reset(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset catalog: %w", err)
	}
	s.invalidateCache(ctx)
	slog.Info("catalog reset", "deleted", n)
	return n, nil
}

// SyncRuntimes fills missing runtimes from lookup, pacing calls through
// limiter.
func (s *MovieService) SyncRuntimes(ctx context.Context, lookup RuntimeLookup, limiter *rate.Limiter) (int, error) {
	gaps, err := s.repo.MissingRuntimes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get movies for runtime sync: %w", err)
	}

	updated := 0
	for _, g := range gaps {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return updated, err
			}
		}
		runtime, err := lookup.Runtime(ctx, g.TMDBId)
		if err != nil {
			slog.Error("failed to fetch movie runtime", "tmdb_id", g.TMDBId, "error", err)
			continue
		}
		if runtime <= 0 {
			continue
		}
		if err := s.repo.UpdateRuntime(ctx, g.ID, runtime); err != nil {
			slog.Error("failed to update runtime", "id", g.ID, "error", err)
			continue
		}
		updated++
	}

	if updated > 0 {
		s.invalidateCache(ctx)
	}
	slog.Info("runtime sync completed", "candidates", len(gaps), "updated", updated)
	return updated, nil
}

// ---- Redis Helpers ----

func (s *MovieService) getFromCache(ctx context.Context, key string) (string, error) {
	if s.redis == nil {
		return "", fmt.Errorf("redis not available")
	}
	return s.redis.Get(ctx, key).Result()
}

func (s *MovieService) setCache(ctx context.Context, key, value string, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Error("failed to set cache", "key", key, "error", err)
	}
}

func (s *MovieService) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	for _, pattern := range []string{catalogQueryKeyPrefix + "*", movieDetailKeyPrefix + "*"} {
		iter := s.redis.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			s.redis.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			slog.Error("failed to invalidate cache", "pattern", pattern, "error", err)
		}
	}
	slog.Info("Redis cache invalidated")
}
