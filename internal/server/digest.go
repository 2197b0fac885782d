package server

import (
	"context"
	"fmt"

	"github.com/lotworks/reconboard/internal/analytics"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartDigest schedules the daily summary notification per the digest
// config. The returned stop function halts the schedule; it is a no-op when
// the digest is disabled.
func (s *Server) StartDigest(ctx context.Context) (func(), error) {
	if !s.cfg.Digest.Enabled {
		return func() {}, nil
	}

	c := cron.New()
	_, err := c.AddFunc(s.cfg.Digest.Schedule, func() {
		s.sendDigest(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("server: digest schedule %q: %w", s.cfg.Digest.Schedule, err)
	}
	c.Start()
	s.log.Info("server: digest scheduled",
		zap.String("schedule", s.cfg.Digest.Schedule),
		zap.String("channel", s.cfg.Digest.Channel))

	return func() { c.Stop() }, nil
}

// sendDigest builds and delivers one digest. Best-effort; failures are logged.
func (s *Server) sendDigest(ctx context.Context) {
	body, err := s.analytics.BuildDigest(ctx)
	if err != nil {
		s.log.Error("server: build digest", zap.Error(err))
		return
	}

	res := s.notifier.Send(ctx, notify.Message{
		Channel: s.cfg.Digest.Channel,
		To:      s.cfg.Digest.Recipient,
		Subject: analytics.DigestSubject,
		Body:    body,
	})
	s.metrics.recordNotification(s.cfg.Digest.Channel, res.Success)
	if !res.Success {
		s.log.Warn("server: digest delivery failed", zap.String("detail", res.ProviderMessage))
	}
}
