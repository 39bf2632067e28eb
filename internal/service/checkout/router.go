package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/observability/telemetry"
	"github.com/evmarket/checkout-client/internal/ports"
)

var errNoPaymentURL = errors.New("payment session has neither deeplink nor payUrl")

// Router sends an initiated checkout down the gateway or the wallet path.
type Router struct {
	checkout ports.CheckoutAPI
	log      *zap.Logger
}

func NewRouter(checkout ports.CheckoutAPI, log *zap.Logger) *Router {
	return &Router{checkout: checkout, log: log}
}

// Initiate creates the PENDING transaction. A missing selection fails before
// any request is sent.
func (r *Router) Initiate(ctx context.Context, listing *domain.Listing, sel domain.PaymentSelection) (*domain.CheckoutResult, error) {
	method := sel.Method()
	if method == "" {
		return nil, domain.NewCheckoutError(domain.KindValidation, domain.MsgPaymentMethodRequired, nil)
	}

	result, err := r.checkout.InitiateCheckout(ctx, domain.CheckoutRequest{
		ListingID:     listing.ID,
		ListingType:   listing.Type,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, Classify(err)
	}
	return result, nil
}

// Gateway hands the MoMo session to the opener. Completion happens out of
// band; a nil error only means the handoff happened.
func (r *Router) Gateway(ctx context.Context, transactionID string, info *domain.PaymentInfo, opener ports.URLOpener) (*domain.Handoff, error) {
	if info == nil {
		return nil, withPending(domain.NewCheckoutError(domain.KindPaymentFailed, "",
			errors.New("gateway checkout returned no paymentInfo")), transactionID)
	}

	handoff, err := HandOff(ctx, opener, info, r.log)
	if err != nil {
		return nil, withPending(domain.NewCheckoutError(domain.KindPaymentFailed, "", err), transactionID)
	}
	return handoff, nil
}

// Wallet commits the payment for a transaction Initiate just created. It is
// never retried; on failure the transaction id is reported as pending.
func (r *Router) Wallet(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	tx, err := r.checkout.PayWithWallet(ctx, transactionID)
	if err != nil {
		return nil, withPending(err, transactionID)
	}
	return tx, nil
}

// HandOff opens a MoMo payment session: the app deeplink when the opener
// reports it can, the web payUrl otherwise. Missing the app is not an error.
// Wallet deposits reuse it.
func HandOff(ctx context.Context, opener ports.URLOpener, info *domain.PaymentInfo, log *zap.Logger) (*domain.Handoff, error) {
	if opener == nil {
		return nil, errors.New("no URL opener configured")
	}

	if info.Deeplink != "" {
		ok, err := opener.CanOpen(ctx, info.Deeplink)
		switch {
		case err != nil:
			log.Debug("Deeplink check failed, using web fallback", zap.Error(err))
		case ok:
			err := opener.Open(ctx, info.Deeplink)
			if err == nil {
				telemetry.GatewayHandoffsTotal.WithLabelValues(string(domain.HandoffDeeplink)).Inc()
				return &domain.Handoff{URL: info.Deeplink, Via: domain.HandoffDeeplink}, nil
			}
			log.Warn("Opening deeplink failed, using web fallback", zap.Error(err))
		}
	}

	if info.PayURL == "" {
		return nil, errNoPaymentURL
	}
	if err := opener.Open(ctx, info.PayURL); err != nil {
		return nil, fmt.Errorf("open payment page: %w", err)
	}

	telemetry.GatewayHandoffsTotal.WithLabelValues(string(domain.HandoffWeb)).Inc()
	return &domain.Handoff{URL: info.PayURL, Via: domain.HandoffWeb}, nil
}
