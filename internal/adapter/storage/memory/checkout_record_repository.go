package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

// CheckoutRecordRepository keeps checkout records for the life of the
// process. The CLI and database-less servers use it.
type CheckoutRecordRepository struct {
	mu      sync.RWMutex
	records map[string]domain.CheckoutRecord
}

func NewCheckoutRecordRepository() ports.CheckoutRecordRepository {
	return &CheckoutRecordRepository{records: make(map[string]domain.CheckoutRecord)}
}

func (r *CheckoutRecordRepository) Save(ctx context.Context, rec *domain.CheckoutRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.UpdatedAt = time.Now()
	r.records[rec.TransactionID] = *rec
	return nil
}

func (r *CheckoutRecordRepository) FindByID(ctx context.Context, transactionID string) (*domain.CheckoutRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[transactionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *CheckoutRecordRepository) FindOpen(ctx context.Context, sessionKey string) ([]domain.CheckoutRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.CheckoutRecord
	for _, rec := range r.records {
		if rec.SessionKey == sessionKey && rec.Stage.IsOpen() {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CheckoutRecordRepository) UpdateStage(ctx context.Context, transactionID string, stage domain.CheckoutStage, kind domain.ErrorKind, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[transactionID]
	if !ok {
		return nil
	}
	rec.Stage = stage
	rec.FailureKind = kind
	rec.FailureReason = reason
	rec.UpdatedAt = time.Now()
	r.records[transactionID] = rec
	return nil
}
