// Package discord implements the notify Sender for Discord.
package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/lotworks/reconboard/internal/notify"
)

// session abstracts the discordgo methods we use, enabling test mocks.
type session interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sender posts notifications to a Discord channel over the REST API; no
// gateway connection is opened.
type Sender struct {
	session   session
	channelID string
}

// Opts holds parameters for creating a Discord Sender.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real API.
	Session session
}

// New creates a Discord Sender.
func New(opts Opts) (*Sender, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	s := &Sender{session: opts.Session, channelID: opts.ChannelID}
	if s.session == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		s.session = dg
	}
	return s, nil
}

// Send implements notify.Sender. msg.To overrides the default channel when set.
func (s *Sender) Send(ctx context.Context, msg notify.Message) (string, error) {
	channel := msg.To
	if channel == "" {
		channel = s.channelID
	}
	if channel == "" {
		return "", fmt.Errorf("discord: no channel configured")
	}

	content := msg.Body
	if msg.Subject != "" {
		content = fmt.Sprintf("**%s**\n%s", msg.Subject, msg.Body)
	}

	m, err := s.session.ChannelMessageSend(channel, content)
	if err != nil {
		return "", fmt.Errorf("discord: send to %s: %w", channel, err)
	}
	return fmt.Sprintf("message %s", m.ID), nil
}
