package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/service"
)

// MovieReader is the read side of the catalog.
type MovieReader interface {
	ListMovies(ctx context.Context, filter models.CatalogFilter) ([]models.Movie, error)
	GetMovie(ctx context.Context, id int) (*models.Movie, error)
}

// MovieHandler handles HTTP requests for catalog entries.
type MovieHandler struct {
	svc MovieReader
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(svc MovieReader) *MovieHandler {
	return &MovieHandler{svc: svc}
}

// ListMovies returns catalog entries matching the optional filters.
// @Summary List movies
// @Tags movies
// @Produce json
// @Param tone query string false "Tone" Enums(uplifting,heavy,neutral)
// @Param pace query string false "Pace" Enums(slow,medium,fast)
// @Param max_runtime query int false "Maximum runtime in minutes"
// @Param limit query int false "Maximum number of entries" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /movies [get]
func (h *MovieHandler) ListMovies(c fiber.Ctx) error {
	filter := models.CatalogFilter{
		Tone:       models.Tone(strings.ToLower(c.Query("tone"))),
		Pace:       models.Pace(strings.ToLower(c.Query("pace"))),
		MaxRuntime: fiber.Query(c, "max_runtime", 0),
		Limit:      fiber.Query(c, "limit", 50),
	}
	if filter.Tone != "" && !filter.Tone.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid tone"})
	}
	if filter.Pace != "" && !filter.Pace.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid pace"})
	}
	if filter.MaxRuntime < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid max_runtime"})
	}

	movies, err := h.svc.ListMovies(c.Context(), filter)
	if err != nil {
		slog.Error("failed to list movies", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve movies",
		})
	}

	return c.JSON(fiber.Map{
		"movies": movies,
		"count":  len(movies),
	})
}

// GetMovie returns a single catalog entry.
// @Summary Get movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} models.Movie
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(c fiber.Ctx) error {
	id := fiber.Params[int](c, "id")
	if id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid movie ID",
		})
	}

	movie, err := h.svc.GetMovie(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMovieNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "movie not found",
			})
		}
		slog.Error("failed to get movie", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to retrieve movie",
		})
	}

	return c.JSON(movie)
}
