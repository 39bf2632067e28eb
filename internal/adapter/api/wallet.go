package api

import (
	"context"
	"net/http"

	"github.com/evmarket/checkout-client/internal/domain"
)

func (c *Client) GetWallet(ctx context.Context) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := c.do(ctx, call{op: "get_wallet", method: http.MethodGet, path: "/wallet/"}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Deposit starts a MoMo top-up and returns the payment session to hand off.
func (c *Client) Deposit(ctx context.Context, amount float64) (*domain.PaymentInfo, error) {
	var info domain.PaymentInfo
	err := c.do(ctx, call{
		op:     "wallet_deposit",
		method: http.MethodPost,
		path:   "/wallet/deposit",
		body:   domain.DepositRequest{Amount: amount},
	}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
