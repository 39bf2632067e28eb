package wallet

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/checkout"
)

// Service reads the wallet and starts MoMo top-ups. Balances are shown to
// the buyer but never used to decide whether a payment may go ahead.
type Service struct {
	api ports.WalletAPI
	log *zap.Logger
}

func NewService(api ports.WalletAPI, log *zap.Logger) *Service {
	return &Service{api: api, log: log}
}

var _ ports.WalletService = (*Service)(nil)

func (s *Service) Balance(ctx context.Context) (*domain.Wallet, error) {
	w, err := s.api.GetWallet(ctx)
	if err != nil {
		return nil, checkout.Classify(err)
	}
	return w, nil
}

// Deposit asks the backend for a MoMo session and hands it off the same way
// a gateway checkout does. The credit lands once MoMo notifies the backend.
func (s *Service) Deposit(ctx context.Context, amount float64, opener ports.URLOpener) (*domain.Handoff, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgDepositAmountInvalid, nil)
	}
	if opener == nil {
		return nil, domain.NewCheckoutError(domain.KindPaymentFailed, "", errors.New("no URL opener configured"))
	}

	info, err := s.api.Deposit(ctx, amount)
	if err != nil {
		return nil, checkout.Classify(err)
	}
	if info == nil {
		return nil, domain.NewCheckoutError(domain.KindPaymentFailed, "", errors.New("deposit returned no payment session"))
	}

	handoff, err := checkout.HandOff(ctx, opener, info, s.log)
	if err != nil {
		return nil, domain.NewCheckoutError(domain.KindPaymentFailed, "", err)
	}

	s.log.Info("Deposit handed off",
		zap.String("order_id", info.OrderID),
		zap.Float64("amount", amount),
		zap.String("via", string(handoff.Via)),
	)
	return handoff, nil
}
