package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/ports"
)

type ChatbotHandler struct {
	service ports.ChatbotService
	log     *zap.Logger
}

func NewChatbotHandler(service ports.ChatbotService, log *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		service: service,
		log:     log,
	}
}

type AskRequest struct {
	Question string `json:"question"`
}

func (h *ChatbotHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/chatbot", h.Ask)
}

func (h *ChatbotHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	answer, err := h.service.Ask(c.UserContext(), req.Question)
	if err != nil {
		return err
	}
	return c.JSON(answer)
}
