package domain

import (
	"time"
)

// CheckoutStage is the client-observed lifecycle of one checkout. It never
// drives a server transition; it only records what the client saw last.
type CheckoutStage string

const (
	StageNone      CheckoutStage = "NONE"
	StagePending   CheckoutStage = "PENDING"
	StageHandedOff CheckoutStage = "HANDED_OFF"
	StageCompleted CheckoutStage = "COMPLETED"
	StageFailed    CheckoutStage = "FAILED"
	// StageCancelled is only reached through reconciliation.
	StageCancelled CheckoutStage = "CANCELLED"
)

func (s CheckoutStage) IsOpen() bool {
	return s == StagePending || s == StageHandedOff || s == StageFailed
}

// StageFromTransaction maps the authoritative server status onto the local
// stage used for bookkeeping.
func StageFromTransaction(status TransactionStatus) CheckoutStage {
	switch status {
	case TransactionStatusCompleted:
		return StageCompleted
	case TransactionStatusCancelled:
		return StageCancelled
	case TransactionStatusFailed:
		return StageFailed
	default:
		return StagePending
	}
}

// HandoffVia tells which URL was opened for an external payment.
type HandoffVia string

const (
	HandoffDeeplink HandoffVia = "deeplink"
	HandoffWeb      HandoffVia = "web"
)

type Handoff struct {
	URL string     `json:"url"`
	Via HandoffVia `json:"via"`
}

// Outcome is what a finished orchestration reports to its caller.
type Outcome struct {
	TransactionID string        `json:"transactionId"`
	Method        PaymentMethod `json:"paymentMethod"`
	Stage         CheckoutStage `json:"stage"`
	Listing       *Listing      `json:"listing,omitempty"`
	Transaction   *Transaction  `json:"transaction,omitempty"`
	Handoff       *Handoff      `json:"handoff,omitempty"`
	Message       string        `json:"message"`
	// RefreshListing asks the caller to go back and re-fetch the listing
	// instead of patching local state.
	RefreshListing bool `json:"refreshListing"`
}

// CheckoutRecord keeps track of transactions this client initiated so a
// dangling PENDING one can be found and reconciled later.
type CheckoutRecord struct {
	TransactionID string        `json:"transaction_id" gorm:"primaryKey"`
	SessionKey    string        `json:"session_key" gorm:"index"`
	BuyerID       string        `json:"buyer_id,omitempty" gorm:"index"`
	ListingID     string        `json:"listing_id" gorm:"index"`
	ListingType   ListingType   `json:"listing_type"`
	Method        PaymentMethod `json:"payment_method"`
	Amount        float64       `json:"amount"`
	Stage         CheckoutStage `json:"stage" gorm:"index"`
	FailureKind   ErrorKind     `json:"failure_kind,omitempty"`
	FailureReason string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (CheckoutRecord) TableName() string {
	return "checkout_records"
}

// Event subjects published while a checkout progresses.
const (
	SubjectCheckoutInitiated = "checkout.initiated"
	SubjectCheckoutHandedOff = "checkout.handed_off"
	SubjectCheckoutCompleted = "checkout.completed"
	SubjectCheckoutFailed    = "checkout.failed"
)

type CheckoutEvent struct {
	ID            string        `json:"id"`
	Subject       string        `json:"subject"`
	TransactionID string        `json:"transaction_id,omitempty"`
	SessionKey    string        `json:"session_key,omitempty"`
	BuyerID       string        `json:"buyer_id,omitempty"`
	BuyerEmail    string        `json:"buyer_email,omitempty"`
	BuyerName     string        `json:"buyer_name,omitempty"`
	ListingID     string        `json:"listing_id"`
	ListingType   ListingType   `json:"listing_type"`
	ListingTitle  string        `json:"listing_title,omitempty"`
	Method        PaymentMethod `json:"payment_method,omitempty"`
	Amount        float64       `json:"amount"`
	Stage         CheckoutStage `json:"stage"`
	FailureKind   ErrorKind     `json:"failure_kind,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
