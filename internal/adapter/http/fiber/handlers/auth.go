package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/http/fiber/middleware"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/session"
)

type AuthHandler struct {
	service  ports.AuthService
	sessions ports.SessionProvider
	log      *zap.Logger
}

func NewAuthHandler(service ports.AuthService, sessions ports.SessionProvider, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		log:      log,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse never carries the backend token; the app only holds the
// session id.
type SessionResponse struct {
	SessionID string       `json:"sessionId"`
	User      *domain.User `json:"user,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireSession fiber.Handler) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/register", h.Register)
	router.Post("/auth/logout", h.Logout)
	router.Post("/auth/refresh", requireSession, h.Refresh)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	previous := c.UserContext()
	key := uuid.NewString()
	sess, err := h.service.Login(session.WithKey(previous, key), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.rotate(c, previous, key)
	return c.JSON(sessionResponse(c, sess))
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	previous := c.UserContext()
	key := uuid.NewString()
	sess, err := h.service.Register(session.WithKey(previous, key), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.rotate(c, previous, key)
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(c, sess))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	sess, err := h.service.RefreshToken(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(sessionResponse(c, sess))
}

// rotate moves the caller to the session key minted at sign-in and drops
// whatever was stored under the key the caller came with.
func (h *AuthHandler) rotate(c *fiber.Ctx, previous context.Context, key string) {
	if err := h.sessions.Clear(previous); err != nil {
		h.log.Warn("Failed to clear previous session",
			zap.String("session_key", session.KeyFrom(previous)),
			zap.Error(err),
		)
	}
	middleware.UseSessionKey(c, key)
}

func sessionResponse(c *fiber.Ctx, sess *domain.Session) SessionResponse {
	resp := SessionResponse{SessionID: middleware.SessionKey(c), User: sess.User}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}
