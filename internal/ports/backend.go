package ports

import (
	"context"

	"github.com/evmarket/checkout-client/internal/domain"
)

// The interfaces below are the marketplace backend as the client sees it.
// The backend owns every state transition; these only request them.

type ListingAPI interface {
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	GetBattery(ctx context.Context, id string) (*domain.Battery, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListBatteries(ctx context.Context) ([]domain.Battery, error)
	GetSellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error)
}

type CheckoutAPI interface {
	// InitiateCheckout always creates a PENDING transaction server-side.
	InitiateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
	// PayWithWallet debits the wallet and completes the transaction.
	PayWithWallet(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

type WalletAPI interface {
	GetWallet(ctx context.Context) (*domain.Wallet, error)
	Deposit(ctx context.Context, amount float64) (*domain.PaymentInfo, error)
}

type TransactionAPI interface {
	MyTransactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error)
}

type ChatbotAPI interface {
	AskChatbot(ctx context.Context, question string) (*domain.ChatbotAnswer, error)
}

type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (string, error)
}
