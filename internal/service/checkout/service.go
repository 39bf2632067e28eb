package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/observability/telemetry"
	"github.com/evmarket/checkout-client/internal/ports"
	"github.com/evmarket/checkout-client/internal/service/session"
)

// Service drives one purchase: gate, initiate, then the gateway handoff or
// the wallet commit. Calls run one after another; nothing is rolled back.
type Service struct {
	gate     *Gate
	router   *Router
	records  ports.CheckoutRecordRepository
	events   ports.EventPublisher
	sessions ports.SessionProvider
	log      *zap.Logger
	now      func() time.Time
}

// NewService builds the orchestrator. records, events and sessions are
// optional and may be nil.
func NewService(
	gate *Gate,
	router *Router,
	records ports.CheckoutRecordRepository,
	events ports.EventPublisher,
	sessions ports.SessionProvider,
	log *zap.Logger,
) *Service {
	return &Service{
		gate:     gate,
		router:   router,
		records:  records,
		events:   events,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

var _ ports.CheckoutService = (*Service)(nil)

// Prepare is the check made when the checkout is first shown.
func (s *Service) Prepare(ctx context.Context, productID string, productType domain.ListingType) (*domain.Listing, error) {
	listing, err := s.gate.Check(ctx, productID, productType)
	if err != nil {
		telemetry.CheckoutFailuresTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return listing, err
	}
	return listing, nil
}

func (s *Service) Checkout(ctx context.Context, cmd ports.CheckoutCommand) (*domain.Outcome, error) {
	// Nothing below may reach the network without a selection
	if cmd.Selection.Method() == "" {
		return nil, s.fail(domain.NewCheckoutError(domain.KindValidation, domain.MsgPaymentMethodRequired, nil))
	}
	if cmd.Selection == domain.SelectionGateway && cmd.Opener == nil {
		return nil, s.fail(domain.NewCheckoutError(domain.KindPaymentFailed, "", errors.New("no URL opener for gateway payment")))
	}

	listing, err := s.gate.Check(ctx, cmd.ProductID, cmd.ProductType)
	if err != nil {
		return nil, s.fail(err)
	}

	result, err := s.router.Initiate(ctx, listing, cmd.Selection)
	if err != nil {
		s.log.Info("Checkout initiation rejected",
			zap.String("listing_id", listing.ID),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return nil, s.fail(err)
	}

	method := cmd.Selection.Method()
	buyer := s.buyer(ctx)
	rec := &domain.CheckoutRecord{
		TransactionID: result.TransactionID,
		SessionKey:    session.KeyFrom(ctx),
		ListingID:     listing.ID,
		ListingType:   listing.Type,
		Method:        method,
		Amount:        listing.Price,
		Stage:         domain.StagePending,
	}
	if buyer != nil {
		rec.BuyerID = buyer.ID
	}
	s.saveRecord(ctx, rec)
	s.publish(ctx, domain.SubjectCheckoutInitiated, rec, listing, buyer)

	s.log.Info("Checkout initiated",
		zap.String("transaction_id", result.TransactionID),
		zap.String("listing_id", listing.ID),
		zap.String("method", string(method)),
	)

	outcome := &domain.Outcome{
		TransactionID: result.TransactionID,
		Method:        method,
		Listing:       listing,
	}

	switch cmd.Selection {
	case domain.SelectionGateway:
		handoff, err := s.router.Gateway(ctx, result.TransactionID, result.PaymentInfo, cmd.Opener)
		if err != nil {
			return nil, s.failPending(ctx, rec, listing, buyer, err)
		}
		s.advance(ctx, rec, listing, buyer, domain.StageHandedOff, domain.SubjectCheckoutHandedOff)

		outcome.Stage = domain.StageHandedOff
		outcome.Handoff = handoff
		outcome.Message = domain.MsgGatewayHandoff
		// Completion arrives out of band; only a re-fetch tells the truth
		outcome.RefreshListing = true

	case domain.SelectionWallet:
		tx, err := s.router.Wallet(ctx, result.TransactionID)
		if err != nil {
			return nil, s.failPending(ctx, rec, listing, buyer, err)
		}

		stage := domain.StageCompleted
		if tx != nil && tx.Status != "" {
			stage = domain.StageFromTransaction(tx.Status)
		}
		outcome.Stage = stage
		outcome.Transaction = tx
		outcome.RefreshListing = true
		if stage == domain.StageCompleted {
			s.advance(ctx, rec, listing, buyer, stage, domain.SubjectCheckoutCompleted)
			outcome.Message = domain.MsgWalletPaymentSucceeded
		} else {
			s.advance(ctx, rec, listing, buyer, stage, "")
			outcome.Message = domain.MsgWalletPaymentSubmitted
		}
	}

	telemetry.CheckoutsTotal.WithLabelValues(string(method), string(outcome.Stage)).Inc()
	return outcome, nil
}

func (s *Service) fail(err error) error {
	ce := Classify(err)
	telemetry.CheckoutFailuresTotal.WithLabelValues(string(ce.Kind)).Inc()
	return ce
}

// failPending records a second-phase failure. The transaction stays PENDING
// on the backend and its id travels with the error.
func (s *Service) failPending(ctx context.Context, rec *domain.CheckoutRecord, listing *domain.Listing, buyer *domain.User, err error) error {
	ce := withPending(err, rec.TransactionID)

	telemetry.DanglingPendingTotal.Inc()
	telemetry.CheckoutsTotal.WithLabelValues(string(rec.Method), string(domain.StageFailed)).Inc()
	telemetry.CheckoutFailuresTotal.WithLabelValues(string(ce.Kind)).Inc()

	s.log.Warn("Checkout left a pending transaction",
		zap.String("transaction_id", rec.TransactionID),
		zap.String("method", string(rec.Method)),
		zap.String("kind", string(ce.Kind)),
		zap.Error(ce.Cause),
	)

	rec.Stage = domain.StageFailed
	rec.FailureKind = ce.Kind
	if ce.Cause != nil {
		rec.FailureReason = ce.Cause.Error()
	}
	if s.records != nil {
		if err := s.records.UpdateStage(ctx, rec.TransactionID, rec.Stage, rec.FailureKind, rec.FailureReason); err != nil {
			s.log.Error("Failed to update checkout record", zap.String("transaction_id", rec.TransactionID), zap.Error(err))
		}
	}
	s.publish(ctx, domain.SubjectCheckoutFailed, rec, listing, buyer)

	return ce
}

func (s *Service) advance(ctx context.Context, rec *domain.CheckoutRecord, listing *domain.Listing, buyer *domain.User, stage domain.CheckoutStage, subject string) {
	rec.Stage = stage
	if s.records != nil {
		if err := s.records.UpdateStage(ctx, rec.TransactionID, stage, "", ""); err != nil {
			s.log.Error("Failed to update checkout record", zap.String("transaction_id", rec.TransactionID), zap.Error(err))
		}
	}
	if subject != "" {
		s.publish(ctx, subject, rec, listing, buyer)
	}
}

func (s *Service) saveRecord(ctx context.Context, rec *domain.CheckoutRecord) {
	if s.records == nil {
		return
	}
	now := s.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := s.records.Save(ctx, rec); err != nil {
		s.log.Error("Failed to save checkout record",
			zap.String("transaction_id", rec.TransactionID),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, subject string, rec *domain.CheckoutRecord, listing *domain.Listing, buyer *domain.User) {
	if s.events == nil {
		return
	}
	event := domain.CheckoutEvent{
		ID:            uuid.NewString(),
		Subject:       subject,
		TransactionID: rec.TransactionID,
		SessionKey:    rec.SessionKey,
		BuyerID:       rec.BuyerID,
		ListingID:     listing.ID,
		ListingType:   listing.Type,
		ListingTitle:  listing.Title,
		Method:        rec.Method,
		Amount:        rec.Amount,
		Stage:         rec.Stage,
		FailureKind:   rec.FailureKind,
		OccurredAt:    s.now().UTC(),
	}
	if buyer != nil {
		event.BuyerEmail = buyer.Email
		event.BuyerName = buyer.Name
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish checkout event",
			zap.String("subject", subject),
			zap.String("transaction_id", rec.TransactionID),
			zap.Error(err),
		)
	}
}

func (s *Service) buyer(ctx context.Context) *domain.User {
	if s.sessions == nil {
		return nil
	}
	sess, err := s.sessions.Get(ctx)
	if err != nil || sess == nil {
		return nil
	}
	return sess.User
}
