package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"cinepulse-recommendation-service/internal/models"
	"cinepulse-recommendation-service/internal/validation"
)

// ChatResponder answers assistant conversations.
type ChatResponder interface {
	Reply(ctx context.Context, req models.ChatRequest) *models.ChatResponse
}

// ChatHandler exposes the movie assistant.
type ChatHandler struct {
	svc ChatResponder
}

func NewChatHandler(svc ChatResponder) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat godoc
// POST /api/v1/chat
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid request body",
		})
	}
	if err := validation.Struct(&req); err != nil {
		return validationFailed(c, err)
	}

	return c.JSON(h.svc.Reply(c.Context(), req))
}
