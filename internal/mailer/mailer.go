// Package mailer is the best-effort external notification channel. It sits
// outside every transaction: failures are logged and swallowed, never
// propagated, so a dead mail relay can never block or roll back a moderation
// decision. The durable in-portal notifications live in the repository layer
// instead.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/membership-portal-api/internal/config"
	"github.com/rs/zerolog"
)

// Broadcaster fans a message out to a set of recipients, best effort.
type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []string, subject, body string)
}

// RelayMailer posts broadcast requests to an external mail relay endpoint.
type RelayMailer struct {
	cfg    config.MailerConfig
	client *http.Client
	log    zerolog.Logger
}

var _ Broadcaster = (*RelayMailer)(nil)

// New creates a RelayMailer. An empty relay URL yields a disabled mailer
// that only logs.
func New(cfg config.MailerConfig, log zerolog.Logger) *RelayMailer {
	return &RelayMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

type relayRequest struct {
	From       string   `json:"from"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// Broadcast sends one message to every recipient via the relay. Errors are
// logged, never returned.
func (m *RelayMailer) Broadcast(ctx context.Context, recipients []string, subject, body string) {
	if len(recipients) == 0 {
		return
	}
	if m.cfg.RelayURL == "" {
		m.log.Debug().Int("recipients", len(recipients)).Str("subject", subject).
			Msg("Mail relay not configured, broadcast skipped")
		return
	}

	payload, err := json.Marshal(relayRequest{
		From:       m.cfg.From,
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("Broadcast payload encoding failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.RelayURL, bytes.NewReader(payload))
	if err != nil {
		m.log.Error().Err(err).Msg("Broadcast request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warn().Err(err).Int("recipients", len(recipients)).Msg("Broadcast delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.log.Warn().Str("status", fmt.Sprintf("%d", resp.StatusCode)).
			Int("recipients", len(recipients)).
			Msg("Mail relay rejected broadcast")
		return
	}

	m.log.Info().Int("recipients", len(recipients)).Str("subject", subject).Msg("Broadcast delivered")
}
