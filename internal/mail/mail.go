package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/okravets/contactsbook/internal/tokens"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<p>Hi {{.Username}},</p>
<p>Please confirm your email by following the link below:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not sign up, ignore this message.</p>
`))

// Sender delivers confirmation emails over SMTP. SendConfirmation only
// enqueues the delivery; failures are logged, never reported back.
type Sender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	BaseURL string
	Tokens  *tokens.Manager
	Logger  *slog.Logger
}

func (s *Sender) SendConfirmation(email, username string) {
	go s.deliver(email, username)
}

func (s *Sender) deliver(email, username string) {
	token, err := s.Tokens.CreateEmailToken(email)
	if err != nil {
		s.Logger.Error("confirmation email skipped", "error", err)
		return
	}

	var body bytes.Buffer
	err = confirmationTmpl.Execute(&body, map[string]string{
		"Username": username,
		"Link":     fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.BaseURL, token),
	})
	if err != nil {
		s.Logger.Error("confirmation email skipped", "error", err)
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Confirm your email")
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	if err := d.DialAndSend(m); err != nil {
		s.Logger.Error("confirmation email failed", "error", err)
		return
	}
	s.Logger.Info("confirmation email sent")
}
