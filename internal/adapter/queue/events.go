package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

// CheckoutSubjects lists every subject checkout events are published on.
var CheckoutSubjects = []string{
	domain.SubjectCheckoutInitiated,
	domain.SubjectCheckoutHandedOff,
	domain.SubjectCheckoutCompleted,
	domain.SubjectCheckoutFailed,
}

// EventPublisher publishes checkout events as JSON on the event's subject.
type EventPublisher struct {
	mq  MessageQueue
	log *zap.Logger
}

var _ ports.EventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(mq MessageQueue, log *zap.Logger) *EventPublisher {
	return &EventPublisher{mq: mq, log: log}
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.CheckoutEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}
	if err := p.mq.Publish(event.Subject, data); err != nil {
		return err
	}
	p.log.Debug("Checkout event published",
		zap.String("subject", event.Subject),
		zap.String("transaction_id", event.TransactionID),
	)
	return nil
}

// SubscribeCheckoutEvents decodes events on the given subjects and passes
// them to handler. Undecodable payloads are logged and dropped.
func SubscribeCheckoutEvents(mq MessageQueue, subjects []string, handler func(domain.CheckoutEvent) error, log *zap.Logger) error {
	for _, subject := range subjects {
		subject := subject
		err := mq.Subscribe(subject, func(data []byte) error {
			var event domain.CheckoutEvent
			if err := json.Unmarshal(data, &event); err != nil {
				log.Warn("Dropping malformed checkout event", zap.String("subject", subject), zap.Error(err))
				return nil
			}
			return handler(event)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
	}
	return nil
}

// SubscribeReceipts sends a receipt for every completed checkout. Send
// failures are logged and not redelivered.
func SubscribeReceipts(mq MessageQueue, notifier ports.ReceiptNotifier, timeout time.Duration, log *zap.Logger) error {
	return SubscribeCheckoutEvents(mq, []string{domain.SubjectCheckoutCompleted}, func(event domain.CheckoutEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := notifier.SendReceipt(ctx, event); err != nil {
			log.Error("Failed to send receipt", zap.String("transaction_id", event.TransactionID), zap.Error(err))
		}
		return nil
	}, log)
}
