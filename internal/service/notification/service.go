package notification

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"math"
	"strconv"
	"strings"
	texttemplate "text/template"

	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
	"github.com/evmarket/checkout-client/internal/ports"
)

type receiptData struct {
	BuyerName     string
	Title         string
	TransactionID string
	Amount        string
	Method        string
	Date          string
}

// ReceiptService e-mails the buyer when a checkout completes.
type ReceiptService struct {
	sender Sender
	html   *htmltemplate.Template
	text   *texttemplate.Template
	log    *zap.Logger
}

var _ ports.ReceiptNotifier = (*ReceiptService)(nil)

func NewReceiptService(sender Sender, log *zap.Logger) *ReceiptService {
	return &ReceiptService{
		sender: sender,
		html:   htmltemplate.Must(htmltemplate.New("receipt").Parse(receiptHTML)),
		text:   texttemplate.Must(texttemplate.New("receipt").Parse(receiptText)),
		log:    log,
	}
}

// SendReceipt ignores events other than checkout.completed and events
// without a buyer e-mail.
func (s *ReceiptService) SendReceipt(ctx context.Context, event domain.CheckoutEvent) error {
	if event.Subject != domain.SubjectCheckoutCompleted {
		return nil
	}
	if event.BuyerEmail == "" {
		s.log.Debug("No buyer e-mail, skipping receipt", zap.String("transaction_id", event.TransactionID))
		return nil
	}

	data := receiptData{
		BuyerName:     event.BuyerName,
		Title:         event.ListingTitle,
		TransactionID: event.TransactionID,
		Amount:        FormatVND(event.Amount),
		Method:        methodLabel(event.Method),
		Date:          event.OccurredAt.Format("02/01/2006 15:04"),
	}
	if data.BuyerName == "" {
		data.BuyerName = "there"
	}
	if data.Title == "" {
		data.Title = "your order"
	}

	var html, text bytes.Buffer
	if err := s.html.Execute(&html, data); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	if err := s.text.Execute(&text, data); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	if err := s.sender.Send(ctx, event.BuyerEmail, event.BuyerName, receiptSubject, text.String(), html.String()); err != nil {
		return fmt.Errorf("send receipt for %s: %w", event.TransactionID, err)
	}

	s.log.Info("Receipt sent", zap.String("transaction_id", event.TransactionID))
	return nil
}

func methodLabel(m domain.PaymentMethod) string {
	switch m {
	case domain.PaymentMethodMoMo:
		return "MoMo"
	case domain.PaymentMethodWallet:
		return "EVmarket wallet"
	default:
		return string(m)
	}
}

// FormatVND renders an amount the way prices are shown in the app,
// e.g. 1500000 -> "1.500.000 ₫".
func FormatVND(amount float64) string {
	digits := strconv.FormatInt(int64(math.Round(amount)), 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + " ₫"
	if neg {
		out = "-" + out
	}
	return out
}
