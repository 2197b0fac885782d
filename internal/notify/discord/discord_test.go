package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/lotworks/reconboard/internal/notify"
)

// mockSession records ChannelMessageSend calls.
type mockSession struct {
	channels []string
	contents []string
	err      error
}

func (m *mockSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channels = append(m.channels, channelID)
	m.contents = append(m.contents, content)
	if m.err != nil {
		return nil, m.err
	}
	return &discordgo.Message{ID: "msg-1"}, nil
}

func TestNew_RequiresToken(t *testing.T) {
	if _, err := New(Opts{}); err == nil {
		t.Fatal("expected error without token or session")
	}
}

func TestSend_DefaultChannel(t *testing.T) {
	mock := &mockSession{}
	s, err := New(Opts{Session: mock, ChannelID: "555"})
	if err != nil {
		t.Fatalf("New(): %v", err)
	}

	provider, err := s.Send(context.Background(), notify.Message{Subject: "s", Body: "b"})
	if err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if len(mock.channels) != 1 || mock.channels[0] != "555" {
		t.Errorf("sent to %v, want [555]", mock.channels)
	}
	if provider != "message msg-1" {
		t.Errorf("provider = %q", provider)
	}
}

func TestSend_SubjectRenderedBold(t *testing.T) {
	mock := &mockSession{}
	s, _ := New(Opts{Session: mock, ChannelID: "555"})

	if _, err := s.Send(context.Background(), notify.Message{Subject: "Vehicle done", Body: "details"}); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if mock.contents[0] != "**Vehicle done**\ndetails" {
		t.Errorf("content = %q", mock.contents[0])
	}
}

func TestSend_NoChannel(t *testing.T) {
	s, _ := New(Opts{Session: &mockSession{}})
	if _, err := s.Send(context.Background(), notify.Message{Body: "b"}); err == nil {
		t.Fatal("expected error without a channel")
	}
}

func TestSend_APIError(t *testing.T) {
	s, _ := New(Opts{Session: &mockSession{err: fmt.Errorf("forbidden")}, ChannelID: "555"})
	if _, err := s.Send(context.Background(), notify.Message{Body: "b"}); err == nil {
		t.Fatal("expected error when the API call fails")
	}
}
