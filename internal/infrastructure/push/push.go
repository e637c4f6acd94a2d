// Package push delivers device notifications.
package push

import (
	"context"
	"errors"
	"strings"

	"site-report-backend/pkg/logger"
)

var ErrNoToken = errors.New("push: empty device token")

type Message struct {
	Token string
	Title string
	Body  string
	Link  string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender records pushes in the log instead of reaching a provider. It
// stands in until a provider account exists for the mobile app.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSender{log: log.With("client", "push")}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if strings.TrimSpace(msg.Token) == "" {
		return ErrNoToken
	}
	s.log.Info("push queued", "device", shortToken(msg.Token), "title", msg.Title, "link", msg.Link)
	return nil
}

func shortToken(t string) string {
	if len(t) <= 8 {
		return t
	}
	return t[:8] + "…"
}
