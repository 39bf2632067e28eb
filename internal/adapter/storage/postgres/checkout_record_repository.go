package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

var openStages = []domain.CheckoutStage{domain.StagePending, domain.StageHandedOff, domain.StageFailed}

type CheckoutRecordRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCheckoutRecordRepository(db *gorm.DB, log *zap.Logger) ports.CheckoutRecordRepository {
	return &CheckoutRecordRepository{
		db:  db,
		log: log,
	}
}

func (r *CheckoutRecordRepository) Save(ctx context.Context, rec *domain.CheckoutRecord) error {
	result := r.db.WithContext(ctx).Save(rec)
	if result.Error != nil {
		r.log.Error("Failed to save checkout record",
			zap.String("transaction_id", rec.TransactionID),
			zap.Error(result.Error),
		)
		return result.Error
	}
	return nil
}

func (r *CheckoutRecordRepository) FindByID(ctx context.Context, transactionID string) (*domain.CheckoutRecord, error) {
	var rec domain.CheckoutRecord
	err := r.db.WithContext(ctx).First(&rec, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *CheckoutRecordRepository) FindOpen(ctx context.Context, sessionKey string) ([]domain.CheckoutRecord, error) {
	var recs []domain.CheckoutRecord
	err := r.db.WithContext(ctx).
		Where("session_key = ? AND stage IN ?", sessionKey, openStages).
		Order("created_at desc").
		Find(&recs).Error
	return recs, err
}

func (r *CheckoutRecordRepository) UpdateStage(ctx context.Context, transactionID string, stage domain.CheckoutStage, kind domain.ErrorKind, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.CheckoutRecord{}).
		Where("transaction_id = ?", transactionID).
		Updates(map[string]interface{}{
			"stage":          stage,
			"failure_kind":   kind,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		}).Error
}
