package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/harentsoaR/clinica-dental-api/internal/config"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	return m.dialer.DialAndSend(gm)
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	m.Log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("Mail: SMTP disabled, message not sent")
	m.Log.WithField("to", msg.To).Debug(msg.Text)
	return nil
}

// NotificationService sends patient notifications without blocking the
// request that triggered them.
type NotificationService struct {
	mailer  Mailer
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotificationService(mailer Mailer, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{mailer: mailer, log: log, timeout: 30 * time.Second}
}

// SendVerificationCode emails a verification code. Delivery errors are
// logged; the caller never sees them.
func (s *NotificationService) SendVerificationCode(email, name, code string, expiresAt time.Time) {
	msg := Message{
		To:      email,
		Subject: "Código de verificación de tu cuenta",
		Text: fmt.Sprintf(
			"Hola %s,\n\nTu código de verificación es: %s\n\nEl código vence a las %s UTC.\n",
			name, code, expiresAt.UTC().Format("15:04 02/01/2006"),
		),
		HTML: fmt.Sprintf(
			"<p>Hola %s,</p><p>Tu código de verificación es: <strong>%s</strong></p><p>El código vence a las %s UTC.</p>",
			name, code, expiresAt.UTC().Format("15:04 02/01/2006"),
		),
	}

	// Send in a goroutine so it doesn't block the API response
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.mailer.Send(ctx, msg); err != nil {
			s.log.WithError(err).WithField("email", email).Error("Registration: failed to send verification email")
			return
		}
		s.log.WithField("email", email).Info("Registration: verification email sent")
	}()
}

// Wait blocks until every pending send has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}
