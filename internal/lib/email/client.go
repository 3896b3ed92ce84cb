// Package email provides an email sending client.
//
// It uses Resend (resend-go) as the provider and renders HTML bodies
// from templates embedded in the binary. Without an API key the client
// runs in dev mode: rendered emails are logged instead of sent, which
// keeps local signup and password reset flows usable.
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/trailbook-app/trailbook/internal/config"
)

// Client wraps the Resend client, the sender identity, and a logger.
type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

// NewClient creates an email Client. An empty ResendAPIKey selects
// dev mode.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	var rc *resend.Client
	if cfg.Integration.ResendAPIKey != "" {
		rc = resend.NewClient(cfg.Integration.ResendAPIKey)
	}

	from := cfg.Integration.EmailFrom
	if from == "" {
		from = "Trailbook <onboarding@resend.dev>"
	}

	return &Client{
		client: rc,
		from:   from,
		logger: logger,
	}
}

// SendEmail renders the named template with data and sends it.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	tmpl, err := template.ParseFS(templates, fmt.Sprintf("templates/%s.html", templateName))
	if err != nil {
		return errors.Wrapf(err, "failed to parse email template %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return errors.Wrapf(err, "failed to execute email template %s", templateName)
	}

	if c.client == nil {
		c.logger.Info().
			Str("to", to).
			Str("subject", subject).
			Str("template", string(templateName)).
			Msg("email provider not configured, logging instead of sending")
		c.logger.Debug().Str("body", body.String()).Msg("rendered email body")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
