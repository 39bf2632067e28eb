package mocks

import (
	"context"
	"sync"

	"github.com/evmarket/checkout-client/internal/domain"
)

// MockBackend implements every backend port. Each call is appended to Calls
// so tests can assert which requests were issued and in what order.
type MockBackend struct {
	mu    sync.Mutex
	Calls []string

	GetVehicleFunc       func(ctx context.Context, id string) (*domain.Vehicle, error)
	GetBatteryFunc       func(ctx context.Context, id string) (*domain.Battery, error)
	ListVehiclesFunc     func(ctx context.Context) ([]domain.Vehicle, error)
	ListBatteriesFunc    func(ctx context.Context) ([]domain.Battery, error)
	GetSellerProfileFunc func(ctx context.Context, sellerID string) (*domain.SellerProfile, error)

	InitiateCheckoutFunc func(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error)
	PayWithWalletFunc    func(ctx context.Context, transactionID string) (*domain.Transaction, error)

	GetWalletFunc func(ctx context.Context) (*domain.Wallet, error)
	DepositFunc   func(ctx context.Context, amount float64) (*domain.PaymentInfo, error)

	MyTransactionsFunc func(ctx context.Context, page, limit int) (*domain.TransactionPage, error)

	LoginFunc        func(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	RegisterFunc     func(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	LogoutFunc       func(ctx context.Context) error
	RefreshTokenFunc func(ctx context.Context) (string, error)

	AskChatbotFunc func(ctx context.Context, question string) (*domain.ChatbotAnswer, error)
}

func (m *MockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

// CallCount returns how many times the named call was issued.
func (m *MockBackend) CallCount(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *MockBackend) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	m.record("GetVehicle")
	if m.GetVehicleFunc != nil {
		return m.GetVehicleFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBackend) GetBattery(ctx context.Context, id string) (*domain.Battery, error) {
	m.record("GetBattery")
	if m.GetBatteryFunc != nil {
		return m.GetBatteryFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBackend) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	m.record("ListVehicles")
	if m.ListVehiclesFunc != nil {
		return m.ListVehiclesFunc(ctx)
	}
	return []domain.Vehicle{}, nil
}

func (m *MockBackend) ListBatteries(ctx context.Context) ([]domain.Battery, error) {
	m.record("ListBatteries")
	if m.ListBatteriesFunc != nil {
		return m.ListBatteriesFunc(ctx)
	}
	return []domain.Battery{}, nil
}

func (m *MockBackend) GetSellerProfile(ctx context.Context, sellerID string) (*domain.SellerProfile, error) {
	m.record("GetSellerProfile")
	if m.GetSellerProfileFunc != nil {
		return m.GetSellerProfileFunc(ctx, sellerID)
	}
	return nil, nil
}

func (m *MockBackend) InitiateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	m.record("InitiateCheckout")
	if m.InitiateCheckoutFunc != nil {
		return m.InitiateCheckoutFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockBackend) PayWithWallet(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	m.record("PayWithWallet")
	if m.PayWithWalletFunc != nil {
		return m.PayWithWalletFunc(ctx, transactionID)
	}
	return nil, nil
}

func (m *MockBackend) GetWallet(ctx context.Context) (*domain.Wallet, error) {
	m.record("GetWallet")
	if m.GetWalletFunc != nil {
		return m.GetWalletFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) Deposit(ctx context.Context, amount float64) (*domain.PaymentInfo, error) {
	m.record("Deposit")
	if m.DepositFunc != nil {
		return m.DepositFunc(ctx, amount)
	}
	return nil, nil
}

func (m *MockBackend) MyTransactions(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	m.record("MyTransactions")
	if m.MyTransactionsFunc != nil {
		return m.MyTransactionsFunc(ctx, page, limit)
	}
	return &domain.TransactionPage{}, nil
}

func (m *MockBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return nil, nil
}

func (m *MockBackend) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	m.record("Register")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return nil, nil
}

func (m *MockBackend) Logout(ctx context.Context) error {
	m.record("Logout")
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockBackend) RefreshToken(ctx context.Context) (string, error) {
	m.record("RefreshToken")
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx)
	}
	return "", nil
}

func (m *MockBackend) AskChatbot(ctx context.Context, question string) (*domain.ChatbotAnswer, error) {
	m.record("AskChatbot")
	if m.AskChatbotFunc != nil {
		return m.AskChatbotFunc(ctx, question)
	}
	return &domain.ChatbotAnswer{}, nil
}
