package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the fixed set of failure categories shown to buyers.
type ErrorKind string

const (
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindProductUnavailable  ErrorKind = "PRODUCT_UNAVAILABLE"
	KindTransactionNotFound ErrorKind = "TRANSACTION_NOT_FOUND"
	KindPaymentFailed       ErrorKind = "PAYMENT_FAILED"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindValidation          ErrorKind = "VALIDATION"
	KindNetwork             ErrorKind = "NETWORK"
	KindTimeout             ErrorKind = "TIMEOUT"
	KindServer              ErrorKind = "SERVER_ERROR"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindUnknown             ErrorKind = "UNKNOWN"
)

// DefaultMessage is the user-facing text for a kind when no more specific
// message applies.
func (k ErrorKind) DefaultMessage() string {
	switch k {
	case KindInsufficientBalance:
		return "Your wallet balance is not enough for this payment. Please top up your wallet."
	case KindProductUnavailable:
		return "This product is no longer available or has already been sold."
	case KindTransactionNotFound:
		return "The transaction could not be found. Please try again."
	case KindPaymentFailed:
		return "Payment failed. Please check your payment details and try again."
	case KindUnauthorized:
		return "Your session has expired. Please sign in again."
	case KindValidation:
		return "Please fill in all required information."
	case KindNetwork:
		return "Cannot reach the server. Please check your internet connection."
	case KindTimeout:
		return "The request took too long. Please try again."
	case KindServer:
		return "The server is having trouble. Please try again later."
	case KindNotFound:
		return "The requested resource was not found."
	case KindForbidden:
		return "You do not have permission to perform this action."
	default:
		return "Something went wrong. Please try again later."
	}
}

// CheckoutError is the only error type surfaced to buyers. Message is always
// one of the fixed texts; the raw cause stays in Cause for logs.
type CheckoutError struct {
	Kind    ErrorKind
	Message string
	Status  int
	// PendingTransactionID is set when the failure happened after the backend
	// created a PENDING transaction that the client did not roll back.
	PendingTransactionID string
	Cause                error
}

func (e *CheckoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CheckoutError) Unwrap() error {
	return e.Cause
}

func NewCheckoutError(kind ErrorKind, message string, cause error) *CheckoutError {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &CheckoutError{Kind: kind, Message: message, Cause: cause}
}

// KindOf reports the kind of err, or KindUnknown when err carries none.
func KindOf(err error) ErrorKind {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// Messages used by the availability gate and the router for flow-level
// conditions that never reach the network.
const (
	MsgProductSold            = "This product has already been sold. Please choose another product."
	MsgProductNotAvailable    = "This product is no longer available."
	MsgPaymentMethodRequired  = "Please choose a payment method."
	MsgInvalidCredentials     = "Email or password is incorrect. Please try again."
	MsgAccountExists          = "This email is already registered. Please use another email."
	MsgInvalidEmail           = "The email address is not valid."
	MsgPasswordTooShort       = "The password is too short. Please use at least 6 characters."
	MsgProductNotFound        = "The product was not found. It may have been removed."
	MsgDepositAmountInvalid   = "The deposit amount must be greater than zero."
	MsgQuestionRequired       = "Please type a question for the assistant."
	MsgGatewayHandoff         = "Please complete the payment in the MoMo app, then come back to check your order status."
	MsgWalletPaymentSucceeded = "Payment completed from your EVmarket wallet. You can review it in your purchase history."
	MsgWalletPaymentSubmitted = "Payment submitted. Check your purchase history for the final status."
)
