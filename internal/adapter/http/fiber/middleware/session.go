package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/session"
)

const (
	SessionHeader          = "X-Session-ID"
	InstalledSchemesHeader = "X-Installed-Schemes"

	localSessionKey = "session_key"
)

// Session scopes the request to the caller's session key. A request
// without one gets a fresh key, echoed back in the response header, so a
// first login starts a new session.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(SessionHeader)
		if key == "" {
			key = uuid.NewString()
		}
		UseSessionKey(c, key)
		return c.Next()
	}
}

// UseSessionKey scopes the rest of the request to key and returns it to
// the caller in the session header.
func UseSessionKey(c *fiber.Ctx, key string) {
	c.Locals(localSessionKey, key)
	c.Set(SessionHeader, key)
	c.SetUserContext(session.WithKey(c.UserContext(), key))
}

// SessionKey returns the key set by Session.
func SessionKey(c *fiber.Ctx) string {
	key, _ := c.Locals(localSessionKey).(string)
	return key
}

// RequireSession rejects requests whose session is missing or expired
// before any backend call is made.
func RequireSession(sessions ports.SessionProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := sessions.Get(c.UserContext())
		if err != nil || sess == nil {
			return domain.NewCheckoutError(domain.KindUnauthorized, "", err)
		}
		c.Locals("user", sess.User)
		return c.Next()
	}
}
