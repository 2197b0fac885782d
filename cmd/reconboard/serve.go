package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/lotworks/reconboard/internal/analytics"
	"github.com/lotworks/reconboard/internal/config"
	"github.com/lotworks/reconboard/internal/db"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/lotworks/reconboard/internal/notify/discord"
	"github.com/lotworks/reconboard/internal/notify/slack"
	"github.com/lotworks/reconboard/internal/server"
	"github.com/lotworks/reconboard/internal/workflow"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Reconboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("serve: build logger: %w", err)
	}
	defer log.Sync()

	conn, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(conn); err != nil {
		return err
	}

	dispatcher, err := buildDispatcher(conn, log, cfg)
	if err != nil {
		return err
	}

	coord := workflow.NewCoordinator(conn, dispatcher, log)
	switch {
	case cfg.Slack.Token != "":
		coord.TeamChannel = notify.ChannelSlack
	case cfg.Discord.Token != "":
		coord.TeamChannel = notify.ChannelDiscord
	}

	var cache *redis.Client
	if cfg.Redis.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer cache.Close()
	}

	srv, err := server.New(server.Opts{
		DB:        conn,
		Log:       log,
		Config:    cfg,
		Notifier:  dispatcher,
		Coord:     coord,
		Analytics: analytics.NewService(conn, cache),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stopDigest, err := srv.StartDigest(ctx)
	if err != nil {
		return err
	}
	defer stopDigest()

	return srv.Start(ctx)
}

// buildDispatcher registers a sender for every configured channel. SMS and
// webhook are always available; email, Slack, and Discord depend on config.
func buildDispatcher(conn *gorm.DB, log *zap.Logger, cfg *config.Config) (*notify.Dispatcher, error) {
	d := notify.NewDispatcher(conn, log)

	d.Register(notify.ChannelSMS, notify.NewSMSSender(log))
	d.Register(notify.ChannelWebhook, notify.NewWebhookSender())

	if cfg.SMTP.Host != "" {
		d.Register(notify.ChannelEmail, notify.NewEmailSender(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From))
	}
	if cfg.Slack.Token != "" {
		s, err := slack.New(slack.Opts{BotToken: cfg.Slack.Token, ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		d.Register(notify.ChannelSlack, s)
	}
	if cfg.Discord.Token != "" {
		dc, err := discord.New(discord.Opts{BotToken: cfg.Discord.Token, ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			return nil, err
		}
		d.Register(notify.ChannelDiscord, dc)
	}
	return d, nil
}
