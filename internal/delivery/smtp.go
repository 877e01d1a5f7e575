package delivery

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type SmtpOptions struct {
	Server   string
	Port     int
	Username string
	Password string
	From     Address
}

type SMTPProvider struct {
	options SmtpOptions
}

func NewSMTPProvider(options SmtpOptions) SMTPProvider {
	if options.Port == 0 {
		options.Port = 587
	}
	if options.Username == "" {
		options.Username = options.From.Email
	}
	return SMTPProvider{options: options}
}

func (p SMTPProvider) Name() string {
	return "smtp"
}

func (p SMTPProvider) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := email.NewEmail()
	mail.From = p.options.From.String()
	mail.To = []string{msg.To}
	mail.Subject = msg.Subject
	mail.HTML = []byte(msg.HTML)

	addr := fmt.Sprintf("%s:%d", p.options.Server, p.options.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", p.options.Username, p.options.Password, p.options.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
