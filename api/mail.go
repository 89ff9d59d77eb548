package main

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/go-mail/mail/v2"
)

// confirmationDeliverer hands a confirmation link to the address that was
// used at registration. The SMTP mailer is the real channel; the log
// deliverer stands in when no SMTP host is configured.
type confirmationDeliverer interface {
	DeliverConfirmation(email, confirmURL string) error
}

const confirmationEmailTemplate = `
{{define "subject"}}Confirm your account{{end}}

{{define "plainBody"}}Welcome!

Please confirm your email address by visiting the link below:

{{.ConfirmURL}}

If you did not register, you can ignore this message.
{{end}}

{{define "htmlBody"}}<!doctype html>
<html>
<body>
<p>Welcome!</p>
<p>Please confirm your email address by clicking the link below:</p>
<p><a href="{{.ConfirmURL}}">{{.ConfirmURL}}</a></p>
<p>If you did not register, you can ignore this message.</p>
</body>
</html>{{end}}
`

type mailer struct {
	dialer *mail.Dialer
	sender string
	tmpl   *template.Template
}

func newMailer(host string, port int, username string, password string, sender string) *mailer {
	return &mailer{
		dialer: mail.NewDialer(host, port, username, password),
		sender: sender,
		tmpl:   template.Must(template.New("confirmation").Parse(confirmationEmailTemplate)),
	}
}

func (m *mailer) DeliverConfirmation(email, confirmURL string) error {
	data := struct {
		ConfirmURL string
	}{
		ConfirmURL: confirmURL,
	}

	var subject bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return fmt.Errorf("rendering subject: %w", err)
	}
	var plainBody bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return fmt.Errorf("rendering plain body: %w", err)
	}
	var htmlBody bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return fmt.Errorf("rendering html body: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", email)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	var err error
	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}

// logDeliverer writes the confirmation link to the log instead of sending
// anything.
type logDeliverer struct {
	logger *slog.Logger
}

func (d *logDeliverer) DeliverConfirmation(email, confirmURL string) error {
	d.logger.Info("confirmation link issued", "email", email, "url", confirmURL)
	return nil
}
