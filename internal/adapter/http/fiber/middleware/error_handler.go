package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
)

// StatusForKind is the HTTP status the BFF answers with for a classified
// failure.
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInsufficientBalance, domain.KindPaymentFailed:
		return fiber.StatusPaymentRequired
	case domain.KindProductUnavailable:
		return fiber.StatusConflict
	case domain.KindTransactionNotFound, domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindUnauthorized:
		return fiber.StatusUnauthorized
	case domain.KindForbidden:
		return fiber.StatusForbidden
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNetwork, domain.KindServer:
		return fiber.StatusBadGateway
	case domain.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

type errorBody struct {
	Kind                 domain.ErrorKind `json:"kind"`
	Message              string           `json:"message"`
	PendingTransactionID string           `json:"pending_transaction_id,omitempty"`
}

// ErrorHandler renders every error as {"error": {kind, message,
// pending_transaction_id}}. Unclassified errors never leak their text.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ce *domain.CheckoutError
		if errors.As(err, &ce) {
			code := StatusForKind(ce.Kind)
			log.Info("Request failed",
				zap.String("path", c.Path()),
				zap.String("kind", string(ce.Kind)),
				zap.String("pending_transaction_id", ce.PendingTransactionID),
				zap.Error(ce.Cause),
			)
			return c.Status(code).JSON(fiber.Map{"error": errorBody{
				Kind:                 ce.Kind,
				Message:              ce.Message,
				PendingTransactionID: ce.PendingTransactionID,
			}})
		}

		code := fiber.StatusInternalServerError
		body := errorBody{Kind: domain.KindUnknown, Message: domain.KindUnknown.DefaultMessage()}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			body.Message = fe.Message
			switch code {
			case fiber.StatusUnauthorized:
				body.Kind = domain.KindUnauthorized
			case fiber.StatusNotFound:
				body.Kind = domain.KindNotFound
			case fiber.StatusBadRequest:
				body.Kind = domain.KindValidation
			}
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{"error": body})
	}
}
