package domain

import (
	"encoding/json"
	"time"
)

// TransactionStatus is owned by the backend. The client only reads it.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

type ProductRef struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

type Transaction struct {
	ID             string            `json:"id"`
	BuyerID        string            `json:"buyerId"`
	Status         TransactionStatus `json:"status"`
	VehicleID      *string           `json:"vehicleId"`
	BatteryID      *string           `json:"batteryId"`
	FinalPrice     float64           `json:"finalPrice"`
	PaymentGateway PaymentMethod     `json:"paymentGateway"`
	PaymentDetail  json.RawMessage   `json:"paymentDetail,omitempty"`
	Vehicle        *ProductRef       `json:"vehicle"`
	Battery        *ProductRef       `json:"battery"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// ListingID returns whichever product id the transaction is linked to.
func (t *Transaction) ListingID() string {
	if t.VehicleID != nil {
		return *t.VehicleID
	}
	if t.BatteryID != nil {
		return *t.BatteryID
	}
	return ""
}

type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Page
}
