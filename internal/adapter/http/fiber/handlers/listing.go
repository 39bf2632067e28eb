package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/ports"
)

type ListingHandler struct {
	service ports.ListingService
	log     *zap.Logger
}

func NewListingHandler(service ports.ListingService, log *zap.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/vehicles", h.Vehicles)
	router.Get("/batteries", h.Batteries)
	router.Get("/sellers/:id/profile", h.SellerProfile)
}

func (h *ListingHandler) Vehicles(c *fiber.Ctx) error {
	listings, err := h.service.ListVehicles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"vehicles": listings})
}

func (h *ListingHandler) Batteries(c *fiber.Ctx) error {
	listings, err := h.service.ListBatteries(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"batteries": listings})
}

func (h *ListingHandler) SellerProfile(c *fiber.Ctx) error {
	profile, err := h.service.SellerProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
