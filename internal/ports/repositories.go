package ports

import (
	"context"

	"github.com/evmarket/checkout-client/internal/domain"
)

// CheckoutRecordRepository is local bookkeeping for initiated transactions.
// It is never consulted to decide whether a purchase may proceed.
type CheckoutRecordRepository interface {
	Save(ctx context.Context, record *domain.CheckoutRecord) error
	FindByID(ctx context.Context, transactionID string) (*domain.CheckoutRecord, error)
	// FindOpen returns records for sessionKey whose stage is still open.
	FindOpen(ctx context.Context, sessionKey string) ([]domain.CheckoutRecord, error)
	UpdateStage(ctx context.Context, transactionID string, stage domain.CheckoutStage, kind domain.ErrorKind, reason string) error
}
