package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/infrastructure/circuitbreaker"
)

// messageRule maps a fragment of the backend's error text to a kind. Rules
// are checked in order and the first match wins.
type messageRule struct {
	contains []string
	all      bool
	kind     domain.ErrorKind
	message  string
}

var messageRules = []messageRule{
	{contains: []string{"Insufficient balance", "insufficient balance"}, kind: domain.KindInsufficientBalance},
	{contains: []string{"Product is not available", "not available"}, kind: domain.KindProductUnavailable},
	{contains: []string{"Transaction not found"}, kind: domain.KindTransactionNotFound},
	{contains: []string{"Payment failed"}, kind: domain.KindPaymentFailed},
	{contains: []string{"Invalid credentials", "wrong password"}, kind: domain.KindUnauthorized, message: domain.MsgInvalidCredentials},
	{contains: []string{"User already exists", "email already"}, kind: domain.KindValidation, message: domain.MsgAccountExists},
	{contains: []string{"Unauthorized", "unauthorized"}, kind: domain.KindUnauthorized},
	{contains: []string{"required", "missing"}, kind: domain.KindValidation},
	{contains: []string{"Invalid email"}, kind: domain.KindValidation, message: domain.MsgInvalidEmail},
	{contains: []string{"Password", "short"}, all: true, kind: domain.KindValidation, message: domain.MsgPasswordTooShort},
	{contains: []string{"Product not found"}, kind: domain.KindNotFound, message: domain.MsgProductNotFound},
	{contains: []string{"Network", "network"}, kind: domain.KindNetwork},
}

func (r messageRule) matches(text string) bool {
	for _, frag := range r.contains {
		hit := strings.Contains(text, frag)
		if r.all && !hit {
			return false
		}
		if !r.all && hit {
			return true
		}
	}
	return r.all
}

// Classify turns any error from the checkout flow into exactly one
// user-facing CheckoutError. The server's own text is only used to pick the
// kind; the message shown is always one of the fixed texts.
func Classify(err error) *domain.CheckoutError {
	if err == nil {
		return nil
	}

	var ce *domain.CheckoutError
	if errors.As(err, &ce) {
		return ce
	}

	if circuitbreaker.IsRejected(err) {
		return domain.NewCheckoutError(domain.KindServer, "", err)
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status > 0 {
		out := classifyResponse(apiErr)
		out.Cause = err
		out.Status = apiErr.Status
		return out
	}

	switch {
	case api.IsTimeout(err):
		return domain.NewCheckoutError(domain.KindTimeout, "", err)
	case api.IsNetwork(err):
		return domain.NewCheckoutError(domain.KindNetwork, "", err)
	case errors.Is(err, context.Canceled):
		return domain.NewCheckoutError(domain.KindNetwork, "", err)
	}

	return domain.NewCheckoutError(domain.KindUnknown, "", err)
}

func classifyResponse(e *api.Error) *domain.CheckoutError {
	if text := e.Detail(); text != "" {
		for _, rule := range messageRules {
			if rule.matches(text) {
				return domain.NewCheckoutError(rule.kind, rule.message, nil)
			}
		}
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		return domain.NewCheckoutError(domain.KindUnauthorized, "", nil)
	case e.Status >= 500:
		return domain.NewCheckoutError(domain.KindServer, "", nil)
	case e.Status == http.StatusNotFound:
		return domain.NewCheckoutError(domain.KindNotFound, "", nil)
	case e.Status == http.StatusForbidden:
		return domain.NewCheckoutError(domain.KindForbidden, "", nil)
	case e.Status == http.StatusBadRequest, e.Status == http.StatusUnprocessableEntity:
		return domain.NewCheckoutError(domain.KindValidation, "", nil)
	default:
		return domain.NewCheckoutError(domain.KindUnknown, "", nil)
	}
}

// withPending classifies err and attaches the id of the transaction the
// backend left PENDING.
func withPending(err error, transactionID string) *domain.CheckoutError {
	ce := Classify(err)
	if ce.PendingTransactionID == "" {
		cp := *ce
		cp.PendingTransactionID = transactionID
		return &cp
	}
	return ce
}
