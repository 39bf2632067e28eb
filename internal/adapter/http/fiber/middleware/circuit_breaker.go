package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/infrastructure/circuitbreaker"
)

// handlerFailure carries a handler error through the breaker so it counts
// as a failure and still reaches the error handler unchanged.
type handlerFailure struct {
	err error
}

func (f *handlerFailure) Error() string { return f.err.Error() }

// CircuitBreaker sheds requests while the routes behind it keep failing
// with 5xx answers. Client errors do not count.
func CircuitBreaker(cb *circuitbreaker.CircuitBreaker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var passed error
		_, err := cb.Execute(func() (interface{}, error) {
			passed = c.Next()
			if passed != nil && isServerFailure(passed) {
				return nil, &handlerFailure{err: passed}
			}
			return nil, nil
		})

		if circuitbreaker.IsRejected(err) {
			return domain.NewCheckoutError(domain.KindServer, "", err)
		}
		return passed
	}
}

func isServerFailure(err error) bool {
	var ce *domain.CheckoutError
	if errors.As(err, &ce) {
		return StatusForKind(ce.Kind) >= fiber.StatusInternalServerError
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code >= fiber.StatusInternalServerError
	}
	return true
}
