package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cinepulse-recommendation-service/internal/models"
)

// ErrNotFound is returned when a catalog row does not exist.
var ErrNotFound = errors.New("not found")

const movieColumns = `m.id, m.tmdb_id, m.title, m.content_type, m.overview, m.release_year,
	m.runtime, m.genres, m.emotional_arc, m.ending_type, m.pace, m.tone,
	m.trailer_url, m.backdrop_url, m.streaming_platforms, m.created_at`

// MovieRepository handles catalog reads and administrative writes.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository.
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Query returns every movie satisfying the filter, ordered by id.
func (r *MovieRepository) Query(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error) {
	query, args := buildFilterQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

// Sample returns up to limit movies in no particular order.
func (r *MovieRepository) Sample(ctx context.Context, limit int) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM movies m ORDER BY random() LIMIT $1`, movieColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("sample movies: %w", err)
	}
	defer rows.Close()
	return scanMovies(rows)
}

// GetByID returns a single movie.
func (r *MovieRepository) GetByID(ctx context.Context, id int) (*models.Movie, error) {
	row := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM movies m WHERE m.id = $1`, movieColumns), id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return m, nil
}

// ExistsByTitle reports whether a movie with the title (case-insensitive) exists.
func (r *MovieRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM movies WHERE lower(title) = lower($1))`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return exists, nil
}

// Insert stores a new movie and sets its ID and creation time.
func (r *MovieRepository) Insert(ctx context.Context, m *models.Movie) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO movies (tmdb_id, title, content_type, overview, release_year, runtime,
			genres, emotional_arc, ending_type, pace, tone, trailer_url, backdrop_url,
			streaming_platforms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (tmdb_id) DO UPDATE SET title = EXCLUDED.title
		RETURNING id, created_at
	`, nullableInt(m.TMDBId), m.Title, string(m.ContentType), m.Overview,
		nullableInt(m.ReleaseYear), nullableInt(m.Runtime),
		pq.Array(m.Genres), pq.Array(m.EmotionalArc),
		string(m.EndingType), string(m.Pace), string(m.Tone),
		nullableString(m.TrailerURL), nullableString(m.BackdropURL),
		m.StreamingPlatforms).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movie %q: %w", m.Title, err)
	}
	return nil
}

// DeleteAll removes every catalog row.
func (r *MovieRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies`)
	if err != nil {
		return 0, fmt.Errorf("delete movies: %w", err)
	}
	return res.RowsAffected()
}

// RuntimeGap identifies a TMDB-linked movie without a runtime.
type RuntimeGap struct {
	ID     int
	TMDBId int
}

// MissingRuntimes returns TMDB-linked movies that have no runtime yet.
func (r *MovieRepository) MissingRuntimes(ctx context.Context) ([]RuntimeGap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tmdb_id FROM movies WHERE runtime IS NULL AND tmdb_id IS NOT NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query missing runtimes: %w", err)
	}
	defer rows.Close()

	var result []RuntimeGap
	for rows.Next() {
		var g RuntimeGap
		if err := rows.Scan(&g.ID, &g.TMDBId); err != nil {
			return nil, fmt.Errorf("scan runtime gap: %w", err)
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// UpdateRuntime sets the runtime for a movie.
func (r *MovieRepository) UpdateRuntime(ctx context.Context, id, runtime int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE movies SET runtime = $1 WHERE id = $2`, runtime, id)
	if err != nil {
		return fmt.Errorf("update runtime: %w", err)
	}
	return nil
}

// buildFilterQuery mirrors models.CatalogFilter.Matches in SQL.
func buildFilterQuery(f models.CatalogFilter) (string, []any) {
	conditions := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if f.MaxRuntime > 0 {
		conditions = append(conditions, fmt.Sprintf("m.runtime <= $%d", argIdx))
		args = append(args, f.MaxRuntime)
		argIdx++
	}
	if f.Pace != "" {
		conditions = append(conditions, fmt.Sprintf("m.pace = $%d", argIdx))
		args = append(args, string(f.Pace))
		argIdx++
	}
	if f.Tone != "" {
		conditions = append(conditions, fmt.Sprintf("m.tone = $%d", argIdx))
		args = append(args, string(f.Tone))
		argIdx++
	}
	if f.EndingType != "" {
		conditions = append(conditions, fmt.Sprintf("m.ending_type = $%d", argIdx))
		args = append(args, string(f.EndingType))
		argIdx++
	}
	if len(f.ExcludedGenres) > 0 {
		lowered := make([]string, len(f.ExcludedGenres))
		for i, g := range f.ExcludedGenres {
			lowered[i] = strings.ToLower(g)
		}
		conditions = append(conditions, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM unnest(m.genres) AS g(name) WHERE lower(g.name) = ANY($%d))", argIdx))
		args = append(args, pq.Array(lowered))
		argIdx++
	}

	query := fmt.Sprintf("SELECT %s FROM movies m WHERE %s ORDER BY m.id",
		movieColumns, strings.Join(conditions, " AND "))
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var (
		m                     models.Movie
		tmdbID, year, runtime sql.NullInt64
		trailer, backdrop     sql.NullString
		contentType, ending   string
		pace, tone            string
	)
	if err := row.Scan(
		&m.ID, &tmdbID, &m.Title, &contentType, &m.Overview, &year,
		&runtime, pq.Array(&m.Genres), pq.Array(&m.EmotionalArc), &ending, &pace, &tone,
		&trailer, &backdrop, &m.StreamingPlatforms, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.TMDBId = intFromNull(tmdbID)
	m.ReleaseYear = intFromNull(year)
	m.Runtime = intFromNull(runtime)
	m.ContentType = models.ContentType(contentType)
	m.EndingType = models.EndingType(ending)
	m.Pace = models.Pace(pace)
	m.Tone = models.Tone(tone)
	m.TrailerURL = trailer.String
	m.BackdropURL = backdrop.String
	m.Normalize()
	return &m, nil
}

func scanMovies(rows *sql.Rows) ([]models.Movie, error) {
	movies := make([]models.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
