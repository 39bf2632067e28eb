package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/evmarket/checkout-client/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "login", "/auth/login", creds)
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	return c.authenticate(ctx, "register", "/auth/register", reg)
}

func (c *Client) authenticate(ctx context.Context, op, path string, body interface{}) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body, noAuth: true}, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, errors.New("evmarket api: " + op + ": response has no accessToken")
	}
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{op: "logout", method: http.MethodPost, path: "/auth/logout"}, nil)
}

// RefreshToken exchanges the current token for a new one.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	if err := c.do(ctx, call{op: "refresh_token", method: http.MethodPost, path: "/auth/refresh-token"}, &data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", errors.New("evmarket api: refresh_token: response has no accessToken")
	}
	return data.AccessToken, nil
}
