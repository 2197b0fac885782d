// Package workflow implements the status-change propagation workflow: the
// sequence fired when a vehicle's reconditioning status changes.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lotworks/reconboard/internal/models"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/lotworks/reconboard/internal/timeline"
	"github.com/lotworks/reconboard/internal/vehicle"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidStatus is returned when the requested status is not a member of
// the status set. Membership is the only check: any status may follow any
// other.
var ErrInvalidStatus = errors.New("workflow: invalid status")

// Notifier is the slice of the dispatcher the coordinator needs.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) notify.Result
}

// Meta carries optional request context stamped onto the timeline event.
type Meta struct {
	Department string
	Source     string // e.g. "api", "webhook"
}

// Result is the outcome of one transition.
type Result struct {
	Vehicle  *models.Vehicle       `json:"vehicle"`
	Event    *models.TimelineEvent `json:"event"`
	Notified bool                  `json:"notified"`
}

// Coordinator orchestrates a status change and its side effects: one vehicle
// write, one timeline append, one notification attempt. The three effects
// are not wrapped in a transaction; a notification failure never rolls back
// the status write or the timeline entry.
type Coordinator struct {
	db  *gorm.DB
	ntf Notifier
	log *zap.Logger

	// TeamChannel, when set, receives a copy of every status-change
	// notification on that channel's default destination (e.g. "slack").
	TeamChannel string
}

// NewCoordinator creates a Coordinator. ntf may be nil to skip notifications.
func NewCoordinator(db *gorm.DB, ntf Notifier, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{db: db, ntf: ntf, log: log}
}

// Transition validates and applies a status change to a vehicle.
//
// The status write is skipped when the vehicle is already at newStatus, but a
// timeline event is appended and a notification fired regardless — callers
// needing exactly-once event semantics must deduplicate upstream.
// CompletedAt is set the first time the vehicle enters COMPLETED and is never
// cleared by later transitions.
func (c *Coordinator) Transition(ctx context.Context, vin, newStatus string, actor *models.User, meta Meta) (*Result, error) {
	if !models.ValidStatus(newStatus) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	v, err := vehicle.Get(c.db, vin)
	if err != nil {
		return nil, err
	}
	oldStatus := v.Status

	if newStatus != oldStatus {
		updates := map[string]interface{}{"status": newStatus}
		if newStatus == models.StatusCompleted && v.CompletedAt == nil {
			updates["completed_at"] = time.Now()
		}
		if err := c.db.Model(&models.Vehicle{}).Where("vin = ?", v.VIN).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("workflow: update status %s: %w", v.VIN, err)
		}
	}

	var actorID *uint
	if actor != nil {
		actorID = &actor.ID
	}
	desc := fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
	ev, err := timeline.Record(c.db, v.VIN, models.EventStatusChange, desc, timeline.RecordOpts{
		Department: meta.Department,
		UserID:     actorID,
	})
	if err != nil {
		return nil, err
	}

	// Re-read so the result reflects the persisted state.
	v, err = vehicle.Get(c.db, vin)
	if err != nil {
		return nil, err
	}

	res := &Result{Vehicle: v, Event: ev}
	res.Notified = c.announce(ctx, v, oldStatus, newStatus, actor)
	return res, nil
}

// announce informs stakeholders of the change. Best-effort: failures are
// logged and reflected in the result, never escalated.
func (c *Coordinator) announce(ctx context.Context, v *models.Vehicle, oldStatus, newStatus string, actor *models.User) bool {
	if c.ntf == nil {
		return false
	}

	subject := fmt.Sprintf("%d %s %s: %s", v.Year, v.Make, v.Model, newStatus)
	body := fmt.Sprintf("Vehicle %s moved from %s to %s.", v.VIN, oldStatus, newStatus)
	if actor != nil {
		body += fmt.Sprintf(" Changed by %s.", actor.Email)
	}

	var msgs []notify.Message
	if v.Assignee != nil && v.Assignee.Email != "" {
		msgs = append(msgs, notify.Message{
			Channel: notify.ChannelEmail,
			To:      v.Assignee.Email,
			Subject: subject,
			Body:    body,
		})
	}
	if c.TeamChannel != "" {
		msgs = append(msgs, notify.Message{
			Channel: c.TeamChannel,
			Subject: subject,
			Body:    body,
		})
	}
	if len(msgs) == 0 {
		return false
	}

	ok := true
	for _, m := range msgs {
		r := c.ntf.Send(ctx, m)
		if !r.Success {
			ok = false
			c.log.Warn("workflow: stakeholder notification failed",
				zap.String("vin", v.VIN),
				zap.String("channel", m.Channel),
				zap.String("detail", r.ProviderMessage))
		}
	}
	return ok
}
