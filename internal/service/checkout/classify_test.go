package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/evmarket/checkout-client/internal/adapter/api"
	"github.com/evmarket/checkout-client/internal/domain"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type refusedErr struct{}

func (refusedErr) Error() string   { return "connect: connection refused" }
func (refusedErr) Timeout() bool   { return false }
func (refusedErr) Temporary() bool { return false }

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    domain.ErrorKind
		message string
	}{
		{"insufficient balance", &api.Error{Status: 400, Message: "Insufficient balance"}, domain.KindInsufficientBalance, ""},
		{"insufficient balance lower", &api.Error{Status: 400, Message: "Wallet has insufficient balance"}, domain.KindInsufficientBalance, ""},
		{"not available", &api.Error{Status: 400, Message: "Product is not available"}, domain.KindProductUnavailable, ""},
		{"transaction not found", &api.Error{Status: 404, Message: "Transaction not found"}, domain.KindTransactionNotFound, ""},
		{"payment failed", &api.Error{Status: 400, Message: "Payment failed at gateway"}, domain.KindPaymentFailed, ""},
		{"invalid credentials", &api.Error{Status: 401, Message: "Invalid credentials"}, domain.KindUnauthorized, domain.MsgInvalidCredentials},
		{"account exists", &api.Error{Status: 409, Message: "User already exists"}, domain.KindValidation, domain.MsgAccountExists},
		{"unauthorized text", &api.Error{Status: 400, Message: "Unauthorized access"}, domain.KindUnauthorized, ""},
		{"required field", &api.Error{Status: 400, Message: "listingId is required"}, domain.KindValidation, ""},
		{"invalid email", &api.Error{Status: 400, Message: "Invalid email format"}, domain.KindValidation, domain.MsgInvalidEmail},
		{"short password", &api.Error{Status: 400, Message: "Password is too short"}, domain.KindValidation, domain.MsgPasswordTooShort},
		{"password only", &api.Error{Status: 400, Message: "Password mismatch"}, domain.KindValidation, ""},
		{"product not found", &api.Error{Status: 404, Message: "Product not found"}, domain.KindNotFound, domain.MsgProductNotFound},
		{"error field", &api.Error{Status: 400, ErrorText: "Insufficient balance"}, domain.KindInsufficientBalance, ""},
		{"errors array", &api.Error{Status: 422, Errors: []api.FieldError{{Msg: "paymentMethod must be one of MOMO, WALLET"}}}, domain.KindValidation, ""},
		{"status 401", &api.Error{Status: 401}, domain.KindUnauthorized, ""},
		{"status 503", &api.Error{Status: 503}, domain.KindServer, ""},
		{"status 404", &api.Error{Status: 404}, domain.KindNotFound, ""},
		{"status 403", &api.Error{Status: 403}, domain.KindForbidden, ""},
		{"status 418", &api.Error{Status: http.StatusTeapot, Message: "teapot"}, domain.KindUnknown, ""},
		{"timeout", &api.Error{Op: "x", Cause: timeoutErr{}}, domain.KindTimeout, ""},
		{"deadline", &api.Error{Op: "x", Cause: context.DeadlineExceeded}, domain.KindTimeout, ""},
		{"network", &api.Error{Op: "x", Cause: refusedErr{}}, domain.KindNetwork, ""},
		{"breaker open", &api.Error{Op: "x", Cause: gobreaker.ErrOpenState}, domain.KindServer, ""},
		{"plain error", errors.New("boom"), domain.KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := Classify(tt.err)
			assert.Equal(t, tt.kind, ce.Kind)
			want := tt.message
			if want == "" {
				want = tt.kind.DefaultMessage()
			}
			assert.Equal(t, want, ce.Message)
			assert.ErrorIs(t, ce, tt.err)
		})
	}
}

func TestClassify_KeepsCheckoutErrors(t *testing.T) {
	orig := domain.NewCheckoutError(domain.KindProductUnavailable, domain.MsgProductSold, nil)
	wrapped := fmt.Errorf("gate: %w", orig)
	assert.Same(t, orig, Classify(wrapped))
	assert.Nil(t, Classify(nil))
}

func TestWithPending(t *testing.T) {
	orig := domain.NewCheckoutError(domain.KindInsufficientBalance, "", nil)
	ce := withPending(orig, "tx-1")
	assert.Equal(t, "tx-1", ce.PendingTransactionID)
	assert.Empty(t, orig.PendingTransactionID)
}
