package timeline

import (
	"errors"
	"testing"
	"time"

	"github.com/lotworks/reconboard/internal/models"
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

func seedVehicle(t *testing.T, db *gorm.DB, vin string) {
	t.Helper()
	if _, err := vehicle.Create(db, vehicle.CreateOpts{VIN: vin, Make: "Honda", Model: "Accord"}); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
}

func TestRecord_IncrementsCountByOne(t *testing.T) {
	db := openTestDB(t)
	seedVehicle(t, db, "VINREC00000000001")

	for i := 1; i <= 3; i++ {
		if _, err := Record(db, "VINREC00000000001", "NOTE", "note", RecordOpts{}); err != nil {
			t.Fatalf("Record() call %d: %v", i, err)
		}
		count, err := Count(db, "VINREC00000000001")
		if err != nil {
			t.Fatalf("Count(): %v", err)
		}
		if count != int64(i) {
			t.Errorf("count after %d records = %d", i, count)
		}
	}
}

func TestRecord_ServerAssignedFields(t *testing.T) {
	db := openTestDB(t)
	seedVehicle(t, db, "VINREC00000000002")

	before := time.Now().Add(-time.Second)
	ev, err := Record(db, "vinrec00000000002", models.EventStatusChange, "Status changed from PENDING to IN_PROGRESS", RecordOpts{Department: "detail"})
	if err != nil {
		t.Fatalf("Record(): %v", err)
	}
	if ev.ID == "" {
		t.Error("event ID not assigned")
	}
	if ev.VehicleVIN != "VINREC00000000002" {
		t.Errorf("VehicleVIN = %q, want normalized VIN", ev.VehicleVIN)
	}
	if ev.CreatedAt.Before(before) {
		t.Errorf("CreatedAt = %v, want server-assigned recent timestamp", ev.CreatedAt)
	}
	if ev.Department != "detail" {
		t.Errorf("Department = %q", ev.Department)
	}
}

func TestRecord_VehicleNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := Record(db, "UNKNOWNVIN1234567", "NOTE", "note", RecordOpts{})
	if !errors.Is(err, vehicle.ErrNotFound) {
		t.Fatalf("error = %v, want vehicle.ErrNotFound", err)
	}

	count, err := Count(db, "UNKNOWNVIN1234567")
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0 after failed record", count)
	}
}

func TestRecord_EventTypeRequired(t *testing.T) {
	db := openTestDB(t)
	seedVehicle(t, db, "VINREC00000000003")
	if _, err := Record(db, "VINREC00000000003", "", "desc", RecordOpts{}); err == nil {
		t.Fatal("expected error for empty event type")
	}
}

func TestEvents_ImmutableOnRefetch(t *testing.T) {
	db := openTestDB(t)
	seedVehicle(t, db, "VINREC00000000004")

	ev, err := Record(db, "VINREC00000000004", "NOTE", "original description", RecordOpts{})
	if err != nil {
		t.Fatalf("Record(): %v", err)
	}

	// More activity on the same vehicle must not touch the prior event.
	if _, err := Record(db, "VINREC00000000004", "NOTE", "later event", RecordOpts{}); err != nil {
		t.Fatalf("Record(): %v", err)
	}

	var again models.TimelineEvent
	if err := db.First(&again, "id = ?", ev.ID).Error; err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if again.Description != "original description" || again.EventType != "NOTE" {
		t.Error("event content changed after creation")
	}
	if !again.CreatedAt.Equal(ev.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", ev.CreatedAt, again.CreatedAt)
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	seedVehicle(t, db, "VINREC00000000005")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		ev := models.TimelineEvent{
			ID:         string(rune('a' + i)),
			VehicleVIN: "VINREC00000000005",
			EventType:  "NOTE",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&ev).Error; err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	events, err := List(db, "VINREC00000000005")
	if err != nil {
		t.Fatalf("List(): %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
	if events[0].ID != "c" || events[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want newest first", events[0].ID, events[1].ID, events[2].ID)
	}
}
