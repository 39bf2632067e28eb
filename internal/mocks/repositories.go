package mocks

import (
	"context"
	"sync"

	"github.com/evmarket/checkout-client/internal/domain"
)

// MockCheckoutRecordRepository keeps records in a map unless a func field
// overrides the call.
type MockCheckoutRecordRepository struct {
	mu      sync.Mutex
	Records map[string]domain.CheckoutRecord

	SaveFunc        func(ctx context.Context, rec *domain.CheckoutRecord) error
	FindByIDFunc    func(ctx context.Context, transactionID string) (*domain.CheckoutRecord, error)
	FindOpenFunc    func(ctx context.Context, sessionKey string) ([]domain.CheckoutRecord, error)
	UpdateStageFunc func(ctx context.Context, transactionID string, stage domain.CheckoutStage, kind domain.ErrorKind, reason string) error
}

func NewMockCheckoutRecordRepository() *MockCheckoutRecordRepository {
	return &MockCheckoutRecordRepository{Records: make(map[string]domain.CheckoutRecord)}
}

func (m *MockCheckoutRecordRepository) Save(ctx context.Context, rec *domain.CheckoutRecord) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[rec.TransactionID] = *rec
	return nil
}

func (m *MockCheckoutRecordRepository) FindByID(ctx context.Context, transactionID string) (*domain.CheckoutRecord, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Records[transactionID]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (m *MockCheckoutRecordRepository) FindOpen(ctx context.Context, sessionKey string) ([]domain.CheckoutRecord, error) {
	if m.FindOpenFunc != nil {
		return m.FindOpenFunc(ctx, sessionKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CheckoutRecord
	for _, rec := range m.Records {
		if rec.SessionKey == sessionKey && rec.Stage.IsOpen() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockCheckoutRecordRepository) UpdateStage(ctx context.Context, transactionID string, stage domain.CheckoutStage, kind domain.ErrorKind, reason string) error {
	if m.UpdateStageFunc != nil {
		return m.UpdateStageFunc(ctx, transactionID, stage, kind, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[transactionID]
	if !ok {
		return nil
	}
	rec.Stage = stage
	rec.FailureKind = kind
	rec.FailureReason = reason
	m.Records[transactionID] = rec
	return nil
}

// Stage returns the stored stage for a transaction, or StageNone.
func (m *MockCheckoutRecordRepository) Stage(transactionID string) domain.CheckoutStage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.Records[transactionID]; ok {
		return rec.Stage
	}
	return domain.StageNone
}
