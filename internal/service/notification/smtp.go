package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SMTPSender implements Sender over plain SMTP. It is meant for Mailhog and
// other local servers; production mail goes through SendGrid.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	fromName  string
	useTLS    bool
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string, useTLS bool) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
		fromName:  fromName,
		useTLS:    useTLS,
	}
}

func (p *SMTPSender) Send(ctx context.Context, to, toName, subject, plain, html string) error {
	message := buildMessage(p.formatAddress(p.fromName, p.fromEmail), p.formatAddress(toName, to), subject, plain, html, uuid.NewString())
	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))

	if p.useTLS {
		return p.sendTLS(ctx, addr, to, message)
	}
	return p.sendPlain(addr, to, message)
}

// sendPlain sends without TLS (Mailhog)
func (p *SMTPSender) sendPlain(addr, to string, message []byte) error {
	if err := smtp.SendMail(addr, p.auth(), p.fromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	return nil
}

func (p *SMTPSender) sendTLS(ctx context.Context, addr, to string, message []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{
		ServerName: p.host,
		MinVersion: tls.VersionTLS12,
	}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("tls dial error: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp client error: %w", err)
	}
	defer client.Close()

	if auth := p.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth error: %w", err)
		}
	}
	if err := client.Mail(p.fromEmail); err != nil {
		return fmt.Errorf("smtp mail error: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt error: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data error: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		return fmt.Errorf("smtp write error: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("smtp close error: %w", err)
	}

	return client.Quit()
}

func (p *SMTPSender) auth() smtp.Auth {
	if p.username == "" || p.password == "" {
		return nil
	}
	return smtp.PlainAuth("", p.username, p.password, p.host)
}

func (p *SMTPSender) formatAddress(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), email)
}

// buildMessage renders a multipart/alternative message carrying both bodies.
func buildMessage(from, to, subject, plain, html, boundary string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(`Content-Type: multipart/alternative; boundary="` + boundary + `"` + "\r\n\r\n")

	writePart := func(contentType, body string) {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "; charset=UTF-8\r\n\r\n")
		b.WriteString(body)
		b.WriteString("\r\n")
	}
	writePart("text/plain", plain)
	writePart("text/html", html)
	b.WriteString("--" + boundary + "--\r\n")

	return []byte(b.String())
}
