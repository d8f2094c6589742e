package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
)

type EmailTemplates struct {
	VerifySubject string
	VerifyBody    string
	ResetSubject  string
	ResetBody     string
}

var DefaultEmailTemplates = EmailTemplates{
	VerifySubject: "Verify your email address",
	VerifyBody: `Hi {{.Name}},

Please verify your email address by clicking the link below:

{{.Link}}

This link will expire in {{.ExpiresIn}}.

Thanks,
The Team
`,
	ResetSubject: "Reset your password",
	ResetBody: `Hi {{.Name}},

You requested to reset your password. Click the link below to set a new password:

{{.Link}}

This link will expire in {{.ExpiresIn}}.

If you didn't request this, please ignore this email.

Thanks,
The Team
`,
}

type NotifierConfig struct {
	FrontendURL string
	VerifyPath  string
	ResetPath   string
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	Templates   EmailTemplates
}

// Notifier renders account emails and hands them to an EmailSender.
type Notifier struct {
	sender     EmailSender
	config     NotifierConfig
	verifyBody *template.Template
	resetBody  *template.Template
}

type emailData struct {
	Name      string
	Link      string
	ExpiresIn string
}

func NewNotifier(sender EmailSender, config NotifierConfig) (*Notifier, error) {
	if config.Templates == (EmailTemplates{}) {
		config.Templates = DefaultEmailTemplates
	}
	if config.VerifyPath == "" {
		config.VerifyPath = "/verify-email"
	}
	if config.ResetPath == "" {
		config.ResetPath = "/reset-password"
	}
	if config.VerifyTTL <= 0 {
		config.VerifyTTL = 24 * time.Hour
	}
	if config.ResetTTL <= 0 {
		config.ResetTTL = time.Hour
	}
	verifyBody, err := template.New("verify").Parse(config.Templates.VerifyBody)
	if err != nil {
		return nil, fmt.Errorf("parse verification template: %w", err)
	}
	resetBody, err := template.New("reset").Parse(config.Templates.ResetBody)
	if err != nil {
		return nil, fmt.Errorf("parse reset template: %w", err)
	}
	return &Notifier{
		sender:     sender,
		config:     config,
		verifyBody: verifyBody,
		resetBody:  resetBody,
	}, nil
}

func (n *Notifier) SendVerificationEmail(ctx context.Context, user entity.User, token string) error {
	return n.send(ctx, user, n.config.Templates.VerifySubject, n.verifyBody, emailData{
		Name:      user.DisplayName(),
		Link:      n.buildURL(n.config.VerifyPath, token),
		ExpiresIn: humanDuration(n.config.VerifyTTL),
	})
}

func (n *Notifier) SendPasswordResetEmail(ctx context.Context, user entity.User, token string) error {
	return n.send(ctx, user, n.config.Templates.ResetSubject, n.resetBody, emailData{
		Name:      user.DisplayName(),
		Link:      n.buildURL(n.config.ResetPath, token),
		ExpiresIn: humanDuration(n.config.ResetTTL),
	})
}

func (n *Notifier) send(ctx context.Context, user entity.User, subject string, body *template.Template, data emailData) error {
	if n.sender == nil {
		return fmt.Errorf("email sender not configured")
	}
	var buf bytes.Buffer
	if err := body.Execute(&buf, data); err != nil {
		return err
	}
	return n.sender.Send(ctx, user.Email, subject, buf.String())
}

func (n *Notifier) buildURL(path string, token string) string {
	base := strings.TrimRight(n.config.FrontendURL, "/")
	if base == "" {
		return token
	}
	query := url.Values{"token": {token}}
	return base + path + "?" + query.Encode()
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
