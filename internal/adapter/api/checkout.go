package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/evmarket/checkout-client/internal/domain"
)

// InitiateCheckout creates a PENDING transaction for the listing.
func (c *Client) InitiateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	var result domain.CheckoutResult
	err := c.do(ctx, call{
		op:     "initiate_checkout",
		method: http.MethodPost,
		path:   "/checkout",
		body:   req,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.TransactionID == "" {
		return nil, errors.New("evmarket api: initiate_checkout: response has no transactionId")
	}
	return &result, nil
}

// PayWithWallet commits a wallet payment for a transaction created by
// InitiateCheckout.
func (c *Client) PayWithWallet(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := c.do(ctx, call{
		op:     "pay_with_wallet",
		method: http.MethodPost,
		path:   "/checkout/" + escape(transactionID) + "/pay-with-wallet",
	}, &tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
