// Package notify pushes session lifecycle notifications to humans. Slack is
// the only transport today; the Notifier interface keeps it swappable.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

// Notifier sends a notification about a session event.
type Notifier interface {
	Notify(ctx context.Context, sessionID, eventType, detail string) error
}

// Noop discards all notifications. Used when Slack is not configured.
type Noop struct{}

func (Noop) Notify(context.Context, string, string, string) error { return nil }

// SlackNotifier posts session events to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  zerolog.Logger
}

// NewSlackNotifier creates a notifier posting to the given channel.
func NewSlackNotifier(botToken, channel string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(botToken),
		channel: channel,
		logger:  logger.With().Str("component", "notify.slack").Logger(),
	}
}

// Notify posts a short message describing the session event. Failures are
// returned but callers treat notification as best-effort.
func (n *SlackNotifier) Notify(ctx context.Context, sessionID, eventType, detail string) error {
	text := fmt.Sprintf(":speech_balloon: session `%s` — *%s*: %s", sessionID, eventType, detail)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		n.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to post slack notification")
		return fmt.Errorf("failed to post slack notification: %w", err)
	}
	return nil
}
