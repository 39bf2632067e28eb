package mocks

import (
	"context"
	"sync"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

// MockSessionProvider holds a single session in memory.
type MockSessionProvider struct {
	mu            sync.Mutex
	Session       *domain.Session
	Invalidations []string

	GetFunc func(ctx context.Context) (*domain.Session, error)
}

func (m *MockSessionProvider) Get(ctx context.Context) (*domain.Session, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Session, nil
}

func (m *MockSessionProvider) Set(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = session
	return nil
}

func (m *MockSessionProvider) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = nil
	return nil
}

func (m *MockSessionProvider) Invalidate(ctx context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Session = nil
	m.Invalidations = append(m.Invalidations, reason)
}

// MockURLOpener records every CanOpen and Open call in Calls as
// "can:<url>" and "open:<url>".
type MockURLOpener struct {
	mu    sync.Mutex
	Calls []string

	CanOpenFunc func(ctx context.Context, url string) (bool, error)
	OpenFunc    func(ctx context.Context, url string) error
}

func (m *MockURLOpener) CanOpen(ctx context.Context, url string) (bool, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, "can:"+url)
	m.mu.Unlock()
	if m.CanOpenFunc != nil {
		return m.CanOpenFunc(ctx, url)
	}
	return true, nil
}

func (m *MockURLOpener) Open(ctx context.Context, url string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, "open:"+url)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, url)
	}
	return nil
}

type MockEventPublisher struct {
	mu     sync.Mutex
	Events []domain.CheckoutEvent

	PublishFunc func(ctx context.Context, event domain.CheckoutEvent) error
}

func (m *MockEventPublisher) Publish(ctx context.Context, event domain.CheckoutEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

// Subjects lists the subjects of published events in order.
func (m *MockEventPublisher) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Subject)
	}
	return out
}

type MockReceiptNotifier struct {
	SendReceiptFunc func(ctx context.Context, event domain.CheckoutEvent) error
}

func (m *MockReceiptNotifier) SendReceipt(ctx context.Context, event domain.CheckoutEvent) error {
	if m.SendReceiptFunc != nil {
		return m.SendReceiptFunc(ctx, event)
	}
	return nil
}

// MockCheckoutService is a mock implementation of CheckoutService interface
type MockCheckoutService struct {
	PrepareFunc  func(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error)
	CheckoutFunc func(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error)
}

func (m *MockCheckoutService) Prepare(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error) {
	if m.PrepareFunc != nil {
		return m.PrepareFunc(ctx, productID, productType)
	}
	return nil, nil
}

func (m *MockCheckoutService) Checkout(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, cmd)
	}
	return nil, nil
}

// MockAuthService is a mock implementation of AuthService interface
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, email, password string) (*domain.Session, error)
	RegisterFunc     func(ctx context.Context, name, email, password string) (*domain.Session, error)
	LogoutFunc       func(ctx context.Context) error
	RefreshTokenFunc func(ctx context.Context) (*domain.Session, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, email, password)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthService) RefreshToken(ctx context.Context) (*domain.Session, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx)
	}
	return nil, nil
}

type MockWalletService struct {
	BalanceFunc func(ctx context.Context) (*domain.Wallet, error)
	DepositFunc func(ctx context.Context, amount float64, opener ports.URLOpener) (*domain.Handoff, error)
}

func (m *MockWalletService) Balance(ctx context.Context) (*domain.Wallet, error) {
	if m.BalanceFunc != nil {
		return m.BalanceFunc(ctx)
	}
	return &domain.Wallet{}, nil
}

func (m *MockWalletService) Deposit(ctx context.Context, amount float64, opener ports.URLOpener) (*domain.Handoff, error) {
	if m.DepositFunc != nil {
		return m.DepositFunc(ctx, amount, opener)
	}
	return nil, nil
}

// MockTransactionService is a mock implementation of TransactionService interface
type MockTransactionService struct {
	HistoryFunc   func(ctx context.Context, page, limit int) (*domain.TransactionPage, error)
	ReconcileFunc func(ctx context.Context) ([]domain.CheckoutRecord, error)
}

func (m *MockTransactionService) History(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, page, limit)
	}
	return &domain.TransactionPage{}, nil
}

func (m *MockTransactionService) Reconcile(ctx context.Context) ([]domain.CheckoutRecord, error) {
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx)
	}
	return nil, nil
}

type MockListingService struct {
	ListVehiclesFunc  func(ctx context.Context) ([]domain.Listing, error)
	ListBatteriesFunc func(ctx context.Context) ([]domain.Listing, error)
	SellerProfileFunc func(ctx context.Context, sellerID string) (*domain.SellerProfile, error)
}

func (m *MockListingService) ListVehicles(ctx context.Context) ([]domain.Listing, error) {
	if m.ListVehiclesFunc != nil {
		return m.ListVehiclesFunc(ctx)
	}
	return []domain.Listing{}, nil
}

func (m *MockListingService) ListBatteries(ctx context.Context) ([]domain.Listing, error) {
	if m.ListBatteriesFunc != nil {
		return m.ListBatteriesFunc(ctx)
	}
	return []domain.Listing{}, nil
}

func (m *MockListingService) SellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error) {
	if m.SellerProfileFunc != nil {
		return m.SellerProfileFunc(ctx, sellerID)
	}
	return nil, nil
}

type MockChatbotService struct {
	AskFunc func(ctx context.Context, question string) (*domain.ChatbotAnswer, error)
}

func (m *MockChatbotService) Ask(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question)
	}
	return &domain.ChatbotAnswer{}, nil
}
