package auth

import (
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// NotificationKind selects a message template
type NotificationKind string

const (
	// NotificationVerifyEmail is the registration verification message
	NotificationVerifyEmail NotificationKind = "email-verification"
	// NotificationPasswordReset is the forgot password message
	NotificationPasswordReset NotificationKind = "password-reset"
)

// TemplateParams are the values substituted into a message template
type TemplateParams struct {
	Username string
	Link     string
}

// Notifier renders and delivers account notifications. Rendering and
// transport fail independently: a render failure never reaches the
// wire, a transport failure means content was ready but undeliverable.
type Notifier interface {
	Render(kind NotificationKind, params TemplateParams) (string, error)
	Send(ctx context.Context, to, subject, content string) error
}

const defaultVerificationTemplate = `<html>
<body>
<p>Hi {{.Username}},</p>
<p>Confirm your email address to activate your account:</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not create this account you can ignore this message.</p>
</body>
</html>`

const defaultPasswordResetTemplate = `<html>
<body>
<p>Hi {{.Username}},</p>
<p>We received a request to reset your password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request this, your password is still safe and you can ignore this message.</p>
</body>
</html>`

// SMTPConfig configures the mail transport
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

// Mailer is the SMTP backed Notifier
type Mailer struct {
	cfg       SMTPConfig
	templates map[NotificationKind]*template.Template
	logger    Logger
}

// NewMailer creates a Mailer with the default templates
func NewMailer(cfg SMTPConfig) *Mailer {
	m := &Mailer{
		cfg:       cfg,
		templates: map[NotificationKind]*template.Template{},
		logger:    defLogger{},
	}

	// the defaults are compile time constants, they parse
	m.templates[NotificationVerifyEmail] = template.Must(
		template.New(string(NotificationVerifyEmail)).Parse(defaultVerificationTemplate))
	m.templates[NotificationPasswordReset] = template.Must(
		template.New(string(NotificationPasswordReset)).Parse(defaultPasswordResetTemplate))

	return m
}

// WithLogger overrides the logger used by the mailer
func (m *Mailer) WithLogger(logger Logger) *Mailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithTemplate replaces the template for a notification kind
func (m *Mailer) WithTemplate(kind NotificationKind, body string) (*Mailer, error) {
	tmpl, err := template.New(string(kind)).Parse(body)
	if err != nil {
		return m, goerrors.Wrap(err, ErrTemplateRender.Category, ErrTemplateRender.Message).
			WithTextCode(ErrTemplateRender.TextCode)
	}
	m.templates[kind] = tmpl
	return m, nil
}

// Render produces the message content for a notification kind
func (m *Mailer) Render(kind NotificationKind, params TemplateParams) (string, error) {
	tmpl, ok := m.templates[kind]
	if !ok {
		return "", goerrors.New("unknown notification kind", ErrTemplateRender.Category).
			WithTextCode(ErrTemplateRender.TextCode).
			WithMetadata(map[string]any{"kind": string(kind)})
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", goerrors.Wrap(err, ErrTemplateRender.Category, ErrTemplateRender.Message).
			WithTextCode(ErrTemplateRender.TextCode)
	}

	return buf.String(), nil
}

// Send delivers the content over SMTP
func (m *Mailer) Send(ctx context.Context, to, subject, content string) error {
	if err := m.send(ctx, to, subject, content); err != nil {
		return goerrors.Wrap(err, ErrNotificationSend.Category, ErrNotificationSend.Message).
			WithTextCode(ErrNotificationSend.TextCode).
			WithMetadata(map[string]any{"to": to})
	}
	return nil
}

func (m *Mailer) send(_ context.Context, to, subject, content string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mail transport is not configured")
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(content)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if m.cfg.Secure {
		return m.sendTLS(addr, to, msg.String())
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String()))
}

func (m *Mailer) sendTLS(addr, to, msg string) error {
	tlsCfg := &tls.Config{
		ServerName: m.cfg.Host,
	}
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	return w.Close()
}
