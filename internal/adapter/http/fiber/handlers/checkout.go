package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/middleware"
	"github.com/evmarket/checkout-client/internal/adapter/linking"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

type CheckoutHandler struct {
	service ports.CheckoutService
	log     *zap.Logger
}

func NewCheckoutHandler(service ports.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

type CheckoutRequest struct {
	ProductID     string `json:"productId"`
	ProductType   string `json:"productType"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout/:type/:id", h.Prepare)
	router.Post("/checkout", h.Checkout)
}

// Prepare answers with the listing when it can still be bought, and with a
// PRODUCT_UNAVAILABLE error otherwise.
func (h *CheckoutHandler) Prepare(c *fiber.Ctx) error {
	productType, err := domain.ParseListingType(c.Params("type"))
	if err != nil {
		return domain.NewCheckoutError(domain.KindValidation, "", err)
	}

	listing, err := h.service.Prepare(c.UserContext(), c.Params("id"), productType)
	if err != nil {
		return err
	}
	return c.JSON(listing)
}

// Checkout runs one purchase. For MoMo the app opens outcome.handoff.url;
// the schemes it can open come in X-Installed-Schemes.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	productType, err := domain.ParseListingType(req.ProductType)
	if err != nil {
		return domain.NewCheckoutError(domain.KindValidation, "", err)
	}
	selection, err := domain.ParsePaymentSelection(req.PaymentMethod)
	if err != nil {
		return domain.NewCheckoutError(domain.KindValidation, domain.MsgPaymentMethodRequired, err)
	}

	opener := linking.NewSchemeSetOpener(linking.ParseInstalledSchemes(c.Get(middleware.InstalledSchemesHeader)))
	outcome, err := h.service.Checkout(c.UserContext(), ports.CheckoutCommand{
		ProductID:   req.ProductID,
		ProductType: productType,
		Selection:   selection,
		Opener:      opener,
	})
	if err != nil {
		return err
	}
	return c.JSON(outcome)
}
