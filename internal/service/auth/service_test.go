package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/mocks"
)

func newTestService() (*Service, *mocks.MockBackend, *mocks.MockSessionProvider) {
	backend := &mocks.MockBackend{}
	sessions := &mocks.MockSessionProvider{}
	return NewService(backend, sessions, zap.NewNop()), backend, sessions
}

func TestLogin_StoresSession(t *testing.T) {
	svc, backend, sessions := newTestService()
	backend.LoginFunc = func(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
		assert.Equal(t, "buyer@evmarket.vn", creds.Email)
		return &domain.AuthResult{AccessToken: "tok-1", User: &domain.User{ID: "u-1"}}, nil
	}

	sess, err := svc.Login(context.Background(), " buyer@evmarket.vn ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.AccessToken)
	assert.Equal(t, "tok-1", sessions.Session.AccessToken)
	assert.Equal(t, "u-1", sessions.Session.User.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, backend, sessions := newTestService()
	backend.LoginFunc = func(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
		return nil, &api.Error{Op: "login", Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}

	_, err := svc.Login(context.Background(), "buyer@evmarket.vn", "wrong")
	var ce *domain.CheckoutError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.KindUnauthorized, ce.Kind)
	assert.Equal(t, domain.MsgInvalidCredentials, ce.Message)
	assert.Nil(t, sessions.Session)
}

func TestLogin_MissingFieldsSkipBackend(t *testing.T) {
	svc, backend, _ := newTestService()

	_, err := svc.Login(context.Background(), "", "x")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Empty(t, backend.Calls)
}

func TestRegister_Validation(t *testing.T) {
	svc, backend, _ := newTestService()

	tests := []struct {
		name, email, password, message string
	}{
		{"An", "not-an-email", "secret1", domain.MsgInvalidEmail},
		{"An", "an@evmarket.vn", "123", domain.MsgPasswordTooShort},
		{"", "an@evmarket.vn", "secret1", domain.KindValidation.DefaultMessage()},
	}
	for _, tt := range tests {
		_, err := svc.Register(context.Background(), tt.name, tt.email, tt.password)
		var ce *domain.CheckoutError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, tt.message, ce.Message)
	}
	assert.Empty(t, backend.Calls)
}

func TestRegister_AccountExists(t *testing.T) {
	svc, backend, _ := newTestService()
	backend.RegisterFunc = func(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
		return nil, &api.Error{Op: "register", Status: http.StatusConflict, Message: "User already exists"}
	}

	_, err := svc.Register(context.Background(), "An", "an@evmarket.vn", "secret1")
	var ce *domain.CheckoutError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, domain.MsgAccountExists, ce.Message)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	svc, backend, sessions := newTestService()
	sessions.Session = &domain.Session{AccessToken: "tok"}
	backend.LogoutFunc = func(ctx context.Context) error { return errors.New("offline") }

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, sessions.Session)
}

func TestRefreshToken(t *testing.T) {
	svc, backend, sessions := newTestService()
	user := &domain.User{ID: "u-1"}
	sessions.Session = &domain.Session{AccessToken: "old", User: user}
	backend.RefreshTokenFunc = func(ctx context.Context) (string, error) { return "new", nil }

	sess, err := svc.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new", sess.AccessToken)
	assert.Same(t, user, sessions.Session.User)
}

func TestRefreshToken_FailureSignsOut(t *testing.T) {
	svc, backend, sessions := newTestService()
	sessions.Session = &domain.Session{AccessToken: "old"}
	backend.RefreshTokenFunc = func(ctx context.Context) (string, error) {
		return "", &api.Error{Op: "refresh token", Status: http.StatusUnauthorized}
	}

	_, err := svc.RefreshToken(context.Background())
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	assert.Nil(t, sessions.Session)
}

func TestRefreshToken_NoSession(t *testing.T) {
	svc, backend, _ := newTestService()

	_, err := svc.RefreshToken(context.Background())
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
	assert.Zero(t, backend.CallCount("RefreshToken"))
}
