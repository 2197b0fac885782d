// Package notify bridges board events to outbound channels (email, SMS,
// webhooks, Slack, Discord).
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lotworks/reconboard/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Channel names understood by the dispatcher.
const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelWebhook = "webhook"
	ChannelSlack   = "slack"
	ChannelDiscord = "discord"
)

// Message is a fully-formed notification to deliver on one channel.
type Message struct {
	Channel string
	To      string // address, phone number, URL, or channel ID depending on Channel
	Subject string
	Body    string
}

// Result is the outcome of a single send attempt.
type Result struct {
	NotificationID  string `json:"notificationId,omitempty"`
	Recipient       string `json:"recipient"`
	Success         bool   `json:"success"`
	ProviderMessage string `json:"providerMessage,omitempty"`
}

// Sender delivers a message on a single channel. Implementations do not
// retry; a failed send is reported once and left to the caller.
type Sender interface {
	Send(ctx context.Context, msg Message) (providerMessage string, err error)
}

// Dispatcher routes messages to channel senders and records each attempt as
// a Notification row. There is no queue and no retry: one call, one attempt.
type Dispatcher struct {
	db      *gorm.DB
	log     *zap.Logger
	senders map[string]Sender
}

// NewDispatcher creates a Dispatcher. db may be nil to skip persistence
// (attempts are then only logged).
func NewDispatcher(db *gorm.DB, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		db:      db,
		log:     log,
		senders: make(map[string]Sender),
	}
}

// Register installs a sender for a channel, replacing any previous one.
func (d *Dispatcher) Register(channel string, s Sender) {
	d.senders[channel] = s
}

// Channels returns the names of channels with a registered sender.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.senders))
	for name := range d.senders {
		names = append(names, name)
	}
	return names
}

// Send delivers one message. The attempt is recorded before delivery and its
// status updated after; a delivery failure is reflected in the Result, never
// returned as an error.
func (d *Dispatcher) Send(ctx context.Context, msg Message) Result {
	res := Result{Recipient: msg.To}

	rec := d.recordPending(msg)
	if rec != nil {
		res.NotificationID = rec.ID
	}

	sender, ok := d.senders[msg.Channel]
	if !ok {
		res.ProviderMessage = fmt.Sprintf("no sender registered for channel %q", msg.Channel)
		d.recordOutcome(rec, false, res.ProviderMessage)
		d.log.Warn("notify: unknown channel", zap.String("channel", msg.Channel))
		return res
	}

	providerMsg, err := sender.Send(ctx, msg)
	if err != nil {
		res.ProviderMessage = err.Error()
		d.recordOutcome(rec, false, err.Error())
		d.log.Warn("notify: send failed",
			zap.String("channel", msg.Channel),
			zap.String("recipient", msg.To),
			zap.Error(err))
		return res
	}

	res.Success = true
	res.ProviderMessage = providerMsg
	d.recordOutcome(rec, true, "")
	d.log.Info("notify: sent",
		zap.String("channel", msg.Channel),
		zap.String("recipient", msg.To))
	return res
}

// SendBulk delivers the same subject and body to each recipient in turn.
// Recipients are processed sequentially; one failure does not stop the rest,
// and the returned slice holds one Result per recipient in input order.
func (d *Dispatcher) SendBulk(ctx context.Context, channel string, recipients []string, subject, body string) []Result {
	results := make([]Result, 0, len(recipients))
	for _, to := range recipients {
		results = append(results, d.Send(ctx, Message{
			Channel: channel,
			To:      to,
			Subject: subject,
			Body:    body,
		}))
	}
	return results
}

// ErrNotFound is returned when a notification ID is unknown.
var ErrNotFound = errors.New("notify: notification not found")

// UpdateStatus records a post-hoc delivery status against a notification.
// Nothing couples this to the send itself; providers report back whenever
// (and if) they do.
func (d *Dispatcher) UpdateStatus(id, status string) error {
	if d.db == nil {
		return fmt.Errorf("notify: no store configured")
	}
	switch status {
	case models.NotifyPending, models.NotifySent, models.NotifyFailed:
	default:
		return fmt.Errorf("notify: invalid status %q", status)
	}
	res := d.db.Model(&models.Notification{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("notify: update status %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// recordPending inserts the attempt row. Persistence is best-effort: a store
// failure is logged and the send proceeds without a row.
func (d *Dispatcher) recordPending(msg Message) *models.Notification {
	if d.db == nil {
		return nil
	}
	rec := models.Notification{
		ID:        uuid.NewString(),
		Channel:   msg.Channel,
		Recipient: msg.To,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Status:    models.NotifyPending,
	}
	if err := d.db.Create(&rec).Error; err != nil {
		d.log.Warn("notify: record attempt", zap.Error(err))
		return nil
	}
	return &rec
}

// recordOutcome updates the attempt row after delivery.
func (d *Dispatcher) recordOutcome(rec *models.Notification, success bool, sendErr string) {
	if d.db == nil || rec == nil {
		return
	}
	updates := map[string]interface{}{"error": sendErr}
	if success {
		now := time.Now()
		updates["status"] = models.NotifySent
		updates["sent_at"] = now
	} else {
		updates["status"] = models.NotifyFailed
	}
	if err := d.db.Model(rec).Updates(updates).Error; err != nil {
		d.log.Warn("notify: record outcome", zap.Error(err))
	}
}
