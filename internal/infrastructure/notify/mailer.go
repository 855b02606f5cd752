// Package notify delivers statements to payees.
package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"imprint/internal/core/apperror"
	"imprint/internal/domain/statements"
	"imprint/pkg/logger"
)

// SMTPConfig configures the statement mailer.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer sends rendered statements over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTP-backed statement mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send implements statements.Mailer.
func (m *SMTPMailer) Send(ctx context.Context, st *statements.Statement, attachment []byte, contentType string) error {
	if st.Payee.Email == "" {
		return apperror.NewValidation("payee has no email address").
			WithDetail("statement_id", st.ID.String())
	}

	msg := buildMessage(m.cfg.From, st, attachment, contentType)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{st.Payee.Email}, msg); err != nil {
		return apperror.NewInternal(err).
			WithDetail("statement_id", st.ID.String()).
			WithDetail("recipient", st.Payee.Email)
	}

	logger.Info(ctx, "statement emailed",
		"statement_id", st.ID,
		"number", st.Number,
		"recipient", st.Payee.Email,
	)
	return nil
}

func buildMessage(from string, st *statements.Statement, attachment []byte, contentType string) []byte {
	const boundary = "statement-boundary"

	filename := st.Number + ".bin"
	if contentType == "application/pdf" {
		filename = st.Number + ".pdf"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + st.Payee.Email + "\r\n")
	b.WriteString("Subject: Royalty statement " + st.Number + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/mixed; boundary=" + boundary + "\r\n\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(fmt.Sprintf(
		"Dear %s,\r\n\r\nYour royalty statement %s covering %s to %s is attached.\r\n",
		st.Payee.Name,
		st.Number,
		st.PeriodStart.Format("2006-01-02"),
		st.PeriodEnd.Format("2006-01-02"),
	))

	b.WriteString("\r\n--" + boundary + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("Content-Disposition: attachment; filename=\"" + filename + "\"\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString(attachment))
	b.WriteString("\r\n--" + boundary + "--\r\n")
	return []byte(b.String())
}

// LogMailer logs instead of sending. Used in development and preview tenants.
type LogMailer struct{}

// NewLogMailer creates a mailer that only logs deliveries.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send implements statements.Mailer.
func (m *LogMailer) Send(ctx context.Context, st *statements.Statement, attachment []byte, contentType string) error {
	logger.Info(ctx, "statement delivery (log only)",
		"statement_id", st.ID,
		"number", st.Number,
		"recipient", st.Payee.Email,
		"content_type", contentType,
		"attachment_bytes", len(attachment),
	)
	return nil
}

// Ensure interface compliance.
var (
	_ statements.Mailer = (*SMTPMailer)(nil)
	_ statements.Mailer = (*LogMailer)(nil)
)
