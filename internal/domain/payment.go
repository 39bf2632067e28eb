package domain

import (
	"fmt"
	"strings"
)

// PaymentMethod is the wire value sent to POST /checkout.
type PaymentMethod string

const (
	PaymentMethodMoMo   PaymentMethod = "MOMO"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

// PaymentSelection is what the buyer picked. It lives only for one checkout
// attempt and is never persisted.
type PaymentSelection string

const (
	SelectionNone    PaymentSelection = ""
	SelectionGateway PaymentSelection = "GATEWAY"
	SelectionWallet  PaymentSelection = "WALLET"
)

// ParsePaymentSelection accepts the selection names and the wire method
// names, so "MOMO" selects the gateway path.
func ParsePaymentSelection(s string) (PaymentSelection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return SelectionNone, nil
	case "GATEWAY", string(PaymentMethodMoMo):
		return SelectionGateway, nil
	case "WALLET":
		return SelectionWallet, nil
	default:
		return SelectionNone, fmt.Errorf("unknown payment method %q", s)
	}
}

func (s PaymentSelection) Method() PaymentMethod {
	switch s {
	case SelectionGateway:
		return PaymentMethodMoMo
	case SelectionWallet:
		return PaymentMethodWallet
	default:
		return ""
	}
}

// PaymentInfo is the MoMo payment session returned for gateway checkouts and
// wallet deposits.
type PaymentInfo struct {
	PartnerCode     string  `json:"partnerCode"`
	OrderID         string  `json:"orderId"`
	RequestID       string  `json:"requestId"`
	Amount          float64 `json:"amount"`
	ResponseTime    int64   `json:"responseTime"`
	Message         string  `json:"message"`
	ResultCode      int     `json:"resultCode"`
	PayURL          string  `json:"payUrl"`
	Deeplink        string  `json:"deeplink"`
	QRCodeURL       string  `json:"qrCodeUrl"`
	DeeplinkMiniApp string  `json:"deeplinkMiniApp"`
}

type CheckoutRequest struct {
	ListingID     string        `json:"listingId"`
	ListingType   ListingType   `json:"listingType"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

type CheckoutResult struct {
	TransactionID string       `json:"transactionId"`
	PaymentInfo   *PaymentInfo `json:"paymentInfo"`
}
