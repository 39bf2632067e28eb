package ports

import (
	"context"
	"errors"

	"github.com/evmarket/checkout-client/internal/domain"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
)

// SessionProvider owns the auth token attached to backend calls.
// Invalidate is the 401 trigger: the API client calls it when the backend
// rejects the current token.
type SessionProvider interface {
	Get(ctx context.Context) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
	Invalidate(ctx context.Context, reason string)
}

// URLOpener hands a payment URL to something outside the client: the OS URL
// handler on a desktop, or the mobile app behind the BFF.
type URLOpener interface {
	CanOpen(ctx context.Context, url string) (bool, error)
	Open(ctx context.Context, url string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.CheckoutEvent) error
}

// CheckoutCommand is one press of the pay button.
type CheckoutCommand struct {
	ProductID   string
	ProductType domain.ListingType
	Selection   domain.PaymentSelection
	Opener      URLOpener
}

type CheckoutService interface {
	// Prepare runs the availability gate when the checkout is first shown.
	Prepare(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error)
	Checkout(ctx context.Context, cmd CheckoutCommand) (*domain.Outcome, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, name, email, password string) (*domain.Session, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (*domain.Session, error)
}

type WalletService interface {
	Balance(ctx context.Context) (*domain.Wallet, error)
	Deposit(ctx context.Context, amount float64, opener URLOpener) (*domain.Handoff, error)
}

type TransactionService interface {
	History(ctx context.Context, page, limit int) (*domain.TransactionPage, error)
	Reconcile(ctx context.Context) ([]domain.CheckoutRecord, error)
}

// ChatbotService answers free-text questions about listings.
type ChatbotService interface {
	Ask(ctx context.Context, question string) (*domain.ChatbotAnswer, error)
}

type ListingService interface {
	ListVehicles(ctx context.Context) ([]domain.Listing, error)
	ListBatteries(ctx context.Context) ([]domain.Listing, error)
	SellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error)
}

// ReceiptNotifier tells the buyer about a completed purchase.
type ReceiptNotifier interface {
	SendReceipt(ctx context.Context, event domain.CheckoutEvent) error
}
