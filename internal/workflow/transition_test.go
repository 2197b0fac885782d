package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lotworks/reconboard/internal/models"
	"github.com/lotworks/reconboard/internal/notify"
	"github.com/lotworks/reconboard/internal/timeline"
	"github.com/lotworks/reconboard/internal/vehicle"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Vehicle{}, &models.TimelineEvent{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

// fakeNotifier records sends and optionally fails them all.
type fakeNotifier struct {
	sent []notify.Message
	fail bool
}

func (f *fakeNotifier) Send(ctx context.Context, msg notify.Message) notify.Result {
	f.sent = append(f.sent, msg)
	return notify.Result{Recipient: msg.To, Success: !f.fail, ProviderMessage: "fake"}
}

func seedVehicle(t *testing.T, db *gorm.DB, vin string) *models.Vehicle {
	t.Helper()
	v, err := vehicle.Create(db, vehicle.CreateOpts{VIN: vin, Make: "Honda", Model: "Accord", Year: 2003})
	if err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

func TestTransition_InvalidStatus(t *testing.T) {
	db := openTestDB(t)
	c := NewCoordinator(db, nil, nil)
	seedVehicle(t, db, "VINWF000000000001")

	_, err := c.Transition(context.Background(), "VINWF000000000001", "SHIPPED", nil, Meta{})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("error = %v, want ErrInvalidStatus", err)
	}

	// Nothing written.
	count, _ := timeline.Count(db, "VINWF000000000001")
	if count != 0 {
		t.Errorf("timeline count = %d after rejected transition", count)
	}
}

func TestTransition_UnknownVehicle(t *testing.T) {
	db := openTestDB(t)
	c := NewCoordinator(db, nil, nil)

	_, err := c.Transition(context.Background(), "UNKNOWNVIN1234567", models.StatusInProgress, nil, Meta{})
	if !errors.Is(err, vehicle.ErrNotFound) {
		t.Fatalf("error = %v, want vehicle.ErrNotFound", err)
	}
}

func TestTransition_AppliesStatusAndRecordsEvent(t *testing.T) {
	db := openTestDB(t)
	c := NewCoordinator(db, nil, nil)
	seedVehicle(t, db, "VINWF000000000002")

	actor := models.User{Email: "mgr@example.com", PasswordHash: "x", Role: models.RoleManager}
	if err := db.Create(&actor).Error; err != nil {
		t.Fatalf("seed actor: %v", err)
	}

	res, err := c.Transition(context.Background(), "vinwf000000000002", models.StatusInProgress, &actor, Meta{Department: "detail"})
	if err != nil {
		t.Fatalf("Transition(): %v", err)
	}
	if res.Vehicle.Status != models.StatusInProgress {
		t.Errorf("status = %q", res.Vehicle.Status)
	}
	if res.Event.EventType != models.EventStatusChange {
		t.Errorf("event type = %q", res.Event.EventType)
	}
	if res.Event.Description != "Status changed from PENDING to IN_PROGRESS" {
		t.Errorf("description = %q", res.Event.Description)
	}
	if res.Event.UserID == nil || *res.Event.UserID != actor.ID {
		t.Error("actor not stamped on the event")
	}
	if res.Event.Department != "detail" {
		t.Errorf("department = %q", res.Event.Department)
	}
}

func TestTransition_CompletedAtSetExactlyOnce(t *testing.T) {
	db := openTestDB(t)
	c := NewCoordinator(db, nil, nil)
	seedVehicle(t, db, "VINWF000000000003")

	res, err := c.Transition(context.Background(), "VINWF000000000003", models.StatusCompleted, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition(COMPLETED): %v", err)
	}
	if res.Vehicle.CompletedAt == nil {
		t.Fatal("CompletedAt not set on completion")
	}
	first := *res.Vehicle.CompletedAt

	// Leaving COMPLETED must not clear it.
	res, err = c.Transition(context.Background(), "VINWF000000000003", models.StatusOnHold, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition(ON_HOLD): %v", err)
	}
	if res.Vehicle.CompletedAt == nil {
		t.Fatal("CompletedAt cleared by a later transition")
	}

	// Re-entering COMPLETED must not move it.
	time.Sleep(10 * time.Millisecond)
	res, err = c.Transition(context.Background(), "VINWF000000000003", models.StatusCompleted, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition(COMPLETED again): %v", err)
	}
	if !res.Vehicle.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt moved: %v -> %v", first, *res.Vehicle.CompletedAt)
	}
}

func TestTransition_SameStatusStillAppendsEvent(t *testing.T) {
	db := openTestDB(t)
	ntf := &fakeNotifier{}
	c := NewCoordinator(db, ntf, nil)
	c.TeamChannel = notify.ChannelSlack
	seedVehicle(t, db, "VINWF000000000004")

	for i := 1; i <= 2; i++ {
		if _, err := c.Transition(context.Background(), "VINWF000000000004", models.StatusPending, nil, Meta{}); err != nil {
			t.Fatalf("Transition() call %d: %v", i, err)
		}
	}

	count, err := timeline.Count(db, "VINWF000000000004")
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if count != 2 {
		t.Errorf("timeline count = %d, want 2 (duplicate calls append duplicate events)", count)
	}
	if len(ntf.sent) != 2 {
		t.Errorf("notifications = %d, want 2", len(ntf.sent))
	}
}

func TestTransition_NotifiesAssignee(t *testing.T) {
	db := openTestDB(t)
	ntf := &fakeNotifier{}
	c := NewCoordinator(db, ntf, nil)
	v := seedVehicle(t, db, "VINWF000000000005")

	assignee := models.User{Email: "tech@example.com", PasswordHash: "x", Role: models.RoleUser}
	if err := db.Create(&assignee).Error; err != nil {
		t.Fatalf("seed assignee: %v", err)
	}
	if err := vehicle.Assign(db, v.VIN, assignee.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	res, err := c.Transition(context.Background(), v.VIN, models.StatusInProgress, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition(): %v", err)
	}
	if !res.Notified {
		t.Error("Notified = false with a healthy notifier")
	}
	if len(ntf.sent) != 1 {
		t.Fatalf("sends = %d, want 1", len(ntf.sent))
	}
	if ntf.sent[0].Channel != notify.ChannelEmail || ntf.sent[0].To != "tech@example.com" {
		t.Errorf("sent to %s via %s", ntf.sent[0].To, ntf.sent[0].Channel)
	}
}

func TestTransition_NotificationFailureIsPartialSuccess(t *testing.T) {
	db := openTestDB(t)
	ntf := &fakeNotifier{fail: true}
	c := NewCoordinator(db, ntf, nil)
	c.TeamChannel = notify.ChannelSlack
	seedVehicle(t, db, "VINWF000000000006")

	res, err := c.Transition(context.Background(), "VINWF000000000006", models.StatusInProgress, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition() must not fail on notification failure: %v", err)
	}
	if res.Notified {
		t.Error("Notified = true despite failed send")
	}

	// The status write and the timeline entry both survive.
	v, err := vehicle.Get(db, "VINWF000000000006")
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if v.Status != models.StatusInProgress {
		t.Errorf("status = %q, rolled back?", v.Status)
	}
	count, _ := timeline.Count(db, "VINWF000000000006")
	if count != 1 {
		t.Errorf("timeline count = %d, want 1", count)
	}
}

func TestTransition_NoNotifierNoRecipients(t *testing.T) {
	db := openTestDB(t)
	c := NewCoordinator(db, &fakeNotifier{}, nil)
	seedVehicle(t, db, "VINWF000000000007")

	// No assignee and no team channel: nothing to send to.
	res, err := c.Transition(context.Background(), "VINWF000000000007", models.StatusInProgress, nil, Meta{})
	if err != nil {
		t.Fatalf("Transition(): %v", err)
	}
	if res.Notified {
		t.Error("Notified = true with no stakeholders")
	}
}
