package transaction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/checkout"
	"github.com/evmarket/checkout-client/internal/service/session"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	reconcilePageSize = 50
	reconcileMaxPages = 10
)

type Service struct {
	api     ports.TransactionAPI
	records ports.CheckoutRecordRepository
	log     *zap.Logger
}

func NewService(api ports.TransactionAPI, records ports.CheckoutRecordRepository, log *zap.Logger) *Service {
	return &Service{
		api:     api,
		records: records,
		log:     log,
	}
}

var _ ports.TransactionService = (*Service)(nil)

// History is the buyer's purchase history, the only place the final status
// of a gateway payment can be seen.
func (s *Service) History(ctx context.Context, page, limit int) (*domain.TransactionPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	result, err := s.api.MyTransactions(ctx, page, limit)
	if err != nil {
		return nil, checkout.Classify(err)
	}
	return result, nil
}

// Reconcile brings the local records of this session's open checkouts up to
// date with the server. Only terminal server statuses move a record; a
// transaction still PENDING server-side keeps the stage the client saw.
func (s *Service) Reconcile(ctx context.Context) ([]domain.CheckoutRecord, error) {
	open, err := s.records.FindOpen(ctx, session.KeyFrom(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to load open checkouts: %w", err)
	}
	if len(open) == 0 {
		return []domain.CheckoutRecord{}, nil
	}

	server, err := s.lookup(ctx, open)
	if err != nil {
		return nil, err
	}

	for i := range open {
		rec := &open[i]
		tx, ok := server[rec.TransactionID]
		if !ok {
			s.log.Debug("Open checkout not in server history yet", zap.String("transaction_id", rec.TransactionID))
			continue
		}
		if !tx.Status.IsTerminal() {
			continue
		}

		stage := domain.StageFromTransaction(tx.Status)
		kind, reason := rec.FailureKind, rec.FailureReason
		if stage != domain.StageFailed {
			kind, reason = "", ""
		}
		if stage == rec.Stage && kind == rec.FailureKind {
			continue
		}

		if err := s.records.UpdateStage(ctx, rec.TransactionID, stage, kind, reason); err != nil {
			return nil, fmt.Errorf("failed to update checkout %s: %w", rec.TransactionID, err)
		}
		s.log.Info("Checkout reconciled",
			zap.String("transaction_id", rec.TransactionID),
			zap.String("from", string(rec.Stage)),
			zap.String("to", string(stage)),
		)
		rec.Stage, rec.FailureKind, rec.FailureReason = stage, kind, reason
	}

	return open, nil
}

// lookup pages through the history until every open id is found or the
// history ends.
func (s *Service) lookup(ctx context.Context, open []domain.CheckoutRecord) (map[string]domain.Transaction, error) {
	wanted := make(map[string]bool, len(open))
	for _, rec := range open {
		wanted[rec.TransactionID] = true
	}

	found := make(map[string]domain.Transaction, len(open))
	for page := 1; page <= reconcileMaxPages; page++ {
		result, err := s.api.MyTransactions(ctx, page, reconcilePageSize)
		if err != nil {
			return nil, checkout.Classify(err)
		}
		for _, tx := range result.Transactions {
			if wanted[tx.ID] {
				found[tx.ID] = tx
			}
		}
		if len(found) == len(wanted) || len(result.Transactions) < reconcilePageSize ||
			(result.TotalPages > 0 && page >= result.TotalPages) {
			break
		}
	}
	return found, nil
}
