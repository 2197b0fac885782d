// Package timeline provides the append-only vehicle audit trail.
package timeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lotworks/reconboard/internal/models"
	"github.com/lotworks/reconboard/internal/vehicle"
	"gorm.io/gorm"
)

// RecordOpts holds optional parameters for recording an event.
type RecordOpts struct {
	Department string
	UserID     *uint
}

// Record appends an immutable event to a vehicle's timeline. The referenced
// vehicle must exist. The returned event carries a server-assigned ID and
// timestamp; it is never updated or deleted afterwards.
func Record(db *gorm.DB, vin, eventType, description string, opts RecordOpts) (*models.TimelineEvent, error) {
	vin = vehicle.NormalizeVIN(vin)
	if eventType == "" {
		return nil, fmt.Errorf("timeline: event type is required")
	}

	ok, err := vehicle.Exists(db, vin)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("timeline: %w: %s", vehicle.ErrNotFound, vin)
	}

	ev := models.TimelineEvent{
		ID:          uuid.NewString(),
		VehicleVIN:  vin,
		EventType:   eventType,
		Description: description,
		Department:  opts.Department,
		UserID:      opts.UserID,
	}

	if err := db.Create(&ev).Error; err != nil {
		return nil, fmt.Errorf("timeline: record %s: %w", vin, err)
	}
	return &ev, nil
}

// List returns a vehicle's events, newest first.
func List(db *gorm.DB, vin string) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	if err := db.Where("vehicle_vin = ?", vehicle.NormalizeVIN(vin)).
		Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("timeline: list %s: %w", vin, err)
	}
	return events, nil
}

// Count returns the number of events recorded for a vehicle.
func Count(db *gorm.DB, vin string) (int64, error) {
	var count int64
	if err := db.Model(&models.TimelineEvent{}).
		Where("vehicle_vin = ?", vehicle.NormalizeVIN(vin)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("timeline: count %s: %w", vin, err)
	}
	return count, nil
}
