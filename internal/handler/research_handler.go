package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/research"
	"cinepulse-recommendation-service/internal/service"
	"cinepulse-recommendation-service/internal/validation"
)

const researchNotFoundMessage = "My cinematic sensors couldn't find enough deep data on this title yet. Try a more well-known movie!"

// Discoverer researches uncatalogued titles.
type Discoverer interface {
	Discover(ctx context.Context, title string) (*models.Movie, error)
}

// ResearchHandler exposes title discovery.
type ResearchHandler struct {
	svc Discoverer
}

func NewResearchHandler(svc Discoverer) *ResearchHandler {
	return &ResearchHandler{svc: svc}
}

// Research godoc
// POST /api/v1/research
func (h *ResearchHandler) Research(c fiber.Ctx) error {
	var req models.ResearchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	movie, err := h.svc.Discover(c.Context(), req.Title)
	if err != nil {
		if errors.Is(err, research.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: researchNotFoundMessage})
		}
		slog.Error("research failed", "title", req.Title, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to research title",
		})
	}

	return c.JSON(service.NewMovieRecommendation(*movie, service.Explanation{
		Paragraph: fmt.Sprintf("I've performed a deep scan of '%s'. My analysis reveals a story that is "+
			"primarily %s in tone with a %s pace, offering a journey through %s.",
			movie.Title, movie.Tone, movie.Pace, strings.Join(movie.EmotionalArc, ", ")),
		Reasons: []string{
			"Analyzed specifically for your request",
			fmt.Sprintf("Determined to be %s and %s paced", movie.Tone, movie.Pace),
			"Added to our cinematic collective for future mapping",
		},
	}))
}
