package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/service"
	"cinepulse-recommendation-service/internal/validation"
)

// Recommender is the recommendation pipeline as seen by HTTP.
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResponse, error)
	Snapshots(ctx context.Context, requestID string) ([]models.RecommendationSnapshot, error)
	Policy() service.Policy
	Weights() service.Weights
}

type RecommendationHandler struct {
	svc Recommender
}

func NewRecommendationHandler(svc Recommender) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Health godoc
// GET /health
func (h *RecommendationHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "cinepulse-recommendation-service",
	})
}

// Recommend godoc
// POST /api/v1/recommend
func (h *RecommendationHandler) Recommend(c fiber.Ctx) error {
	var req models.RecommendationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}
	req.Normalize()
	if err := validation.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	resp, err := h.svc.Recommend(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		slog.Error("failed to generate recommendations", "mood", req.Mood, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to generate recommendations",
		})
	}

	return c.JSON(resp)
}

// GetSnapshots godoc
// GET /api/v1/recommendations/:request_id
func (h *RecommendationHandler) GetSnapshots(c fiber.Ctx) error {
	requestID := c.Params("request_id")

	snapshots, err := h.svc.Snapshots(c.Context(), requestID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request ID"})
		}
		slog.Error("failed to fetch snapshots", "request_id", requestID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "failed to fetch recommendation snapshots",
		})
	}
	if len(snapshots) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "recommendation not found"})
	}

	return c.JSON(fiber.Map{
		"request_id": requestID,
		"snapshots":  snapshots,
	})
}

// GetPolicy godoc
// GET /api/v1/policy
func (h *RecommendationHandler) GetPolicy(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"policy":  h.svc.Policy(),
		"weights": h.svc.Weights(),
	})
}
