package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
)

// Messenger delivers a reminder to a recipient on one platform.
type Messenger interface {
	SendReminder(ctx context.Context, recipient, message string) error
}

// LogMessenger is the fallback delivery path when no messenger is configured.
type LogMessenger struct{}

func (LogMessenger) SendReminder(_ context.Context, recipient, message string) error {
	log.Info().Str("recipient", recipient).Str("message", message).Msg("task reminder")
	return nil
}

// SlackMessenger delivers reminders as Slack messages. When a default channel
// is configured it takes precedence over the per-reminder recipient, which is
// an application user id rather than a Slack id.
type SlackMessenger struct {
	client  *slack.Client
	channel string
}

func NewSlackMessenger(client *slack.Client, channel string) *SlackMessenger {
	return &SlackMessenger{client: client, channel: channel}
}

func (m *SlackMessenger) SendReminder(ctx context.Context, recipient, message string) error {
	target := m.channel
	if target == "" {
		target = recipient
	}
	_, _, err := m.client.PostMessageContext(ctx, target, slack.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("notify.SlackMessenger.SendReminder: %w", err)
	}
	return nil
}
