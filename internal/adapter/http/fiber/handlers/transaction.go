package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/ports"
)

type TransactionHandler struct {
	service ports.TransactionService
	log     *zap.Logger
}

func NewTransactionHandler(service ports.TransactionService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		log:     log,
	}
}

func (h *TransactionHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/transactions", h.History)
	router.Post("/transactions/reconcile", h.Reconcile)
}

func (h *TransactionHandler) History(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	result, err := h.service.History(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *TransactionHandler) Reconcile(c *fiber.Ctx) error {
	records, err := h.service.Reconcile(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": records})
}
