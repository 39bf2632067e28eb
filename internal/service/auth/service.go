package auth

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/checkout"
)

const minPasswordLength = 6

// Service signs buyers in against the backend and keeps the resulting token
// in the session provider. It never issues tokens itself.
type Service struct {
	api      ports.AuthAPI
	sessions ports.SessionProvider
	log      *zap.Logger
}

func NewService(api ports.AuthAPI, sessions ports.SessionProvider, log *zap.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		log:      log,
	}
}

var _ ports.AuthService = (*Service)(nil)

func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, "", nil)
	}

	result, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		s.log.Info("Login rejected", zap.String("email", email), zap.Error(err))
		return nil, checkout.Classify(err)
	}
	return s.start(ctx, result)
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, "", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgInvalidEmail, nil)
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgPasswordTooShort, nil)
	}

	result, err := s.api.Register(ctx, domain.Registration{Name: name, Email: email, Password: password})
	if err != nil {
		s.log.Info("Registration rejected", zap.String("email", email), zap.Error(err))
		return nil, checkout.Classify(err)
	}
	return s.start(ctx, result)
}

func (s *Service) start(ctx context.Context, result *domain.AuthResult) (*domain.Session, error) {
	sess := &domain.Session{AccessToken: result.AccessToken, User: result.User}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	if sess.User != nil {
		s.log.Info("User signed in", zap.String("user_id", sess.User.ID))
	}
	return sess, nil
}

// Logout tells the backend and always drops the local session, even when
// the backend call fails.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("Backend logout failed, clearing local session anyway", zap.Error(err))
	}
	return s.sessions.Clear(ctx)
}

// RefreshToken swaps the current token for a new one. Any failure ends the
// session.
func (s *Service) RefreshToken(ctx context.Context) (*domain.Session, error) {
	current, err := s.sessions.Get(ctx)
	if err != nil || current == nil {
		return nil, domain.NewCheckoutError(domain.KindUnauthorized, "", err)
	}

	token, err := s.api.RefreshToken(ctx)
	if err != nil {
		s.log.Warn("Token refresh failed, signing out", zap.Error(err))
		if clearErr := s.sessions.Clear(ctx); clearErr != nil {
			s.log.Error("Failed to clear session", zap.Error(clearErr))
		}
		return nil, checkout.Classify(err)
	}

	sess := &domain.Session{AccessToken: token, User: current.User}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store refreshed session: %w", err)
	}
	return sess, nil
}
