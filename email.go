package main

import (
	"fmt"
	"io"

	"github.com/go-gomail/gomail"
)

// ---------------------------------------------------------------------------
// Email
// ---------------------------------------------------------------------------

// Attachment is an in-memory file sent along with the mail.
type Attachment struct {
	Filename string
	Data     []byte
}

// composeEmail builds the message carrying the invoice PDFs.
func composeEmail(cfg *Config, subject string, attachments ...Attachment) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.Email.From)
	msg.SetHeader("To", cfg.Email.To)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", fmt.Sprintf("Please find attached: %s\n\n%s\n", subject, cfg.Business.Name))

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return msg
}

// sendEmail sends the generated PDFs via SMTP.
func sendEmail(cfg *Config, subject string, attachments ...Attachment) error {
	if err := cfg.canSend(); err != nil {
		return err
	}
	msg := composeEmail(cfg, subject, attachments...)

	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
