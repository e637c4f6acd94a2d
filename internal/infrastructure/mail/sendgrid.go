// Package mail delivers outbound messages through SendGrid's v3 API.
package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-report-backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	ErrGatewayFailure = errors.New("email gateway failure")
	ErrMissingAPIKey  = errors.New("missing EMAIL_API_KEY")
)

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides https://api.sendgrid.com.
	BaseURL string
	Timeout time.Duration
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          string
	ToName      string
	ReplyTo     string
	Subject     string
	Text        string
	Attachments []Attachment
}

type Sender struct {
	cfg Config
	log *logger.Logger
}

func NewSender(cfg Config, log *logger.Logger) (*Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("missing sender address")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{cfg: cfg, log: log.With("client", "sendgrid")}, nil
}

// Send posts one message. Any non-2xx answer is ErrGatewayFailure.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.cfg.APIKey, "/v3/mail/send", s.cfg.BaseURL)
	req.Method = "POST"
	req.Body = sgmail.GetRequestBody(s.build(msg))

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrGatewayFailure, resp.StatusCode, truncate(resp.Body, 300))
	}
	s.log.Debug("email accepted", "to", msg.To, "status", resp.StatusCode)
	return nil
}

func (s *Sender) build(msg Message) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(s.cfg.FromName, s.cfg.FromEmail))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)

	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))

	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}
	return m
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
