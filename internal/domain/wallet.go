package domain

import "time"

// Wallet mirrors the backend ledger. Balances are display-only on the client.
type Wallet struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	AvailableBalance float64   `json:"availableBalance"`
	LockedBalance    float64   `json:"lockedBalance"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type WalletTransactionType string

const (
	WalletTxDeposit  WalletTransactionType = "DEPOSIT"
	WalletTxWithdraw WalletTransactionType = "WITHDRAW"
	WalletTxPayment  WalletTransactionType = "PAYMENT"
	WalletTxRefund   WalletTransactionType = "REFUND"
)

type WalletTransaction struct {
	ID             string                `json:"id"`
	WalletID       string                `json:"walletId"`
	Type           WalletTransactionType `json:"type"`
	Amount         float64               `json:"amount"`
	Status         TransactionStatus     `json:"status"`
	Gateway        string                `json:"gateway,omitempty"`
	GatewayTransID string                `json:"gatewayTransId,omitempty"`
	Description    string                `json:"description"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

type DepositRequest struct {
	Amount float64 `json:"amount"`
}
