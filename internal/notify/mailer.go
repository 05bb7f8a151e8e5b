package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Attachment struct {
	Filename string
	Data     []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) build(msg Message) *mailyak.MailYak {
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	mail := mailyak.New(fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port), auth)
	mail.To(msg.To)
	mail.From(m.cfg.From)
	if m.cfg.FromName != "" {
		mail.FromName(m.cfg.FromName)
	}
	mail.Subject(msg.Subject)
	mail.HTML().Set(msg.HTML)

	for _, a := range msg.Attachments {
		mail.Attach(a.Filename, bytes.NewReader(a.Data))
	}

	return mail
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	if err := m.build(msg).Send(); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return nil
}
