package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
)

// ErrNoResults is returned when a search matches nothing.
var ErrNoResults = errors.New("tmdb: no results")

// Client is the TMDB API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// ---- TMDB Response Types ----

// SearchResponse is the TMDB search/movie response.
type SearchResponse struct {
	Page         int         `json:"page"`
	Results      []TMDBMovie `json:"results"`
	TotalResults int         `json:"total_results"`
}

// TMDBMovie is a movie from TMDB search results.
type TMDBMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	Popularity   float64 `json:"popularity"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	GenreIDs     []int   `json:"genre_ids"`
}

// TMDBMovieDetail is the detailed movie info from TMDB.
type TMDBMovieDetail struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Overview     string      `json:"overview"`
	ReleaseDate  string      `json:"release_date"`
	BackdropPath string      `json:"backdrop_path"`
	Genres       []TMDBGenre `json:"genres"`
	Runtime      int         `json:"runtime"`
}

// TMDBGenre is a genre from TMDB.
type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreListResponse is the TMDB genre/movie/list response.
type GenreListResponse struct {
	Genres []TMDBGenre `json:"genres"`
}

// ---- Client Methods ----

// SearchMovie returns the most relevant TMDB match for query.
func (c *Client) SearchMovie(ctx context.Context, query string) (*TMDBMovie, error) {
	endpoint := fmt.Sprintf(
		"%s/search/movie?api_key=%s&query=%s",
		c.baseURL, c.apiKey, url.QueryEscape(query),
	)

	slog.Debug("searching TMDB", "query", query)
	var result SearchResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to search movie: %w", err)
	}
	if len(result.Results) == 0 {
		return nil, ErrNoResults
	}
	return &result.Results[0], nil
}

// GetMovieDetail fetches detailed movie info from TMDB.
func (c *Client) GetMovieDetail(ctx context.Context, tmdbID int) (*TMDBMovieDetail, error) {
	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s", c.baseURL, tmdbID, c.apiKey)

	slog.Debug("fetching TMDB movie detail", "tmdb_id", tmdbID)
	var result TMDBMovieDetail
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch movie detail: %w", err)
	}
	return &result, nil
}

// Runtime returns the runtime in minutes for a TMDB id.
func (c *Client) Runtime(ctx context.Context, tmdbID int) (int, error) {
	detail, err := c.GetMovieDetail(ctx, tmdbID)
	if err != nil {
		return 0, err
	}
	return detail.Runtime, nil
}

// GetGenres fetches all movie genres from TMDB.
func (c *Client) GetGenres(ctx context.Context) ([]TMDBGenre, error) {
	endpoint := fmt.Sprintf("%s/genre/movie/list?api_key=%s", c.baseURL, c.apiKey)

	slog.Debug("fetching TMDB genres")
	var result GenreListResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch genres: %w", err)
	}
	return result.Genres, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", stripURL(err))
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// stripURL drops the request URL, which carries the API key, from transport
// errors.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
