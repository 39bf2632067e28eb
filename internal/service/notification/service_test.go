package notification

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/domain"
)

type sentMail struct {
	to, toName, subject, plain, html string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, toName, subject, plain, html string) error {
	f.sent = append(f.sent, sentMail{to, toName, subject, plain, html})
	return f.err
}

func completedEvent() domain.CheckoutEvent {
	return domain.CheckoutEvent{
		Subject:       domain.SubjectCheckoutCompleted,
		TransactionID: "tx-1",
		BuyerEmail:    "an@evmarket.vn",
		BuyerName:     "An",
		ListingTitle:  "VinFast VF8 <2023>",
		Method:        domain.PaymentMethodWallet,
		Amount:        1500000,
		OccurredAt:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestSendReceipt(t *testing.T) {
	sender := &fakeSender{}
	svc := NewReceiptService(sender, zap.NewNop())

	require.NoError(t, svc.SendReceipt(context.Background(), completedEvent()))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, "an@evmarket.vn", m.to)
	assert.Equal(t, receiptSubject, m.subject)
	assert.Contains(t, m.plain, "1.500.000 ₫")
	assert.Contains(t, m.plain, "EVmarket wallet")
	assert.Contains(t, m.plain, "01/03/2026 09:30")
	assert.Contains(t, m.html, "VinFast VF8 &lt;2023&gt;")
}

func TestSendReceipt_IgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	svc := NewReceiptService(sender, zap.NewNop())

	ev := completedEvent()
	ev.Subject = domain.SubjectCheckoutHandedOff
	require.NoError(t, svc.SendReceipt(context.Background(), ev))

	ev = completedEvent()
	ev.BuyerEmail = ""
	require.NoError(t, svc.SendReceipt(context.Background(), ev))

	assert.Empty(t, sender.sent)
}

func TestSendReceipt_SenderError(t *testing.T) {
	svc := NewReceiptService(&fakeSender{err: errors.New("quota exceeded")}, zap.NewNop())

	err := svc.SendReceipt(context.Background(), completedEvent())
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestFormatVND(t *testing.T) {
	tests := map[float64]string{
		0:         "0 ₫",
		999:       "999 ₫",
		1000:      "1.000 ₫",
		1500000:   "1.500.000 ₫",
		-25000:    "-25.000 ₫",
		123456789: "123.456.789 ₫",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatVND(in))
	}
}

func TestSendGridSender(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := &sendgrid.Client{Request: sendgrid.GetRequest("SG.test", "/v3/mail/send", srv.URL)}
	sender := newSendGridSender(client, "noreply@evmarket.vn", "EVmarket")

	require.NoError(t, sender.Send(context.Background(), "an@evmarket.vn", "An", "Hi", "plain", "<p>html</p>"))
	assert.Contains(t, body, "an@evmarket.vn")
	assert.Contains(t, body, "noreply@evmarket.vn")
}

func TestSendGridSender_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	client := &sendgrid.Client{Request: sendgrid.GetRequest("SG.bad", "/v3/mail/send", srv.URL)}
	sender := newSendGridSender(client, "noreply@evmarket.vn", "EVmarket")

	err := sender.Send(context.Background(), "an@evmarket.vn", "An", "Hi", "plain", "")
	assert.ErrorContains(t, err, "status 401")
}
