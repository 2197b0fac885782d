// Package slack implements the notify Sender for Slack.
package slack

import (
	"context"
	"fmt"

	"github.com/lotworks/reconboard/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Sender posts notifications to a Slack channel.
type Sender struct {
	client    slackClient
	channelID string
}

// Opts holds parameters for creating a Slack Sender.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // default channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// New creates a Slack Sender.
func New(opts Opts) (*Sender, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	s := &Sender{client: opts.Client, channelID: opts.ChannelID}
	if s.client == nil {
		s.client = slackapi.New(opts.BotToken)
	}
	return s, nil
}

// Send implements notify.Sender. msg.To overrides the default channel when
// set; the subject is rendered bold above the body.
func (s *Sender) Send(ctx context.Context, msg notify.Message) (string, error) {
	channel := msg.To
	if channel == "" {
		channel = s.channelID
	}
	if channel == "" {
		return "", fmt.Errorf("slack: no channel configured")
	}

	text := msg.Body
	if msg.Subject != "" {
		text = fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body)
	}

	respChannel, ts, err := s.client.PostMessage(channel, slackapi.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack: post to %s: %w", channel, err)
	}
	return fmt.Sprintf("posted to %s at %s", respChannel, ts), nil
}
