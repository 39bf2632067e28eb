package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers one e-mail with a plain text and an HTML body.
type Sender interface {
	Send(ctx context.Context, to, toName, subject, plain, html string) error
}

// SendGridSender implements Sender using SendGrid
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return newSendGridSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newSendGridSender(client *sendgrid.Client, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		client: client,
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (p *SendGridSender) Send(ctx context.Context, to, toName, subject, plain, html string) error {
	message := mail.NewSingleEmail(p.from, subject, mail.NewEmail(toName, to), plain, html)

	response, err := p.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}

	// SendGrid returns 2xx for success
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}
