package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/middleware"
	"github.com/evmarket/checkout-client/internal/adapter/linking"
	"github.com/evmarket/checkout-client/internal/ports"
)

type WalletHandler struct {
	service ports.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service ports.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log,
	}
}

type DepositRequest struct {
	Amount float64 `json:"amount"`
}

func (h *WalletHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/wallet", h.Balance)
	router.Post("/wallet/deposit", h.Deposit)
}

func (h *WalletHandler) Balance(c *fiber.Ctx) error {
	w, err := h.service.Balance(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(w)
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	opener := linking.NewSchemeSetOpener(linking.ParseInstalledSchemes(c.Get(middleware.InstalledSchemesHeader)))
	handoff, err := h.service.Deposit(c.UserContext(), req.Amount, opener)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"handoff": handoff})
}
