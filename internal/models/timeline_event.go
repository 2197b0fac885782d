package models

import "time"

// Timeline event types produced by the service itself. EventType is not
// restricted to these; webhook callers may supply their own.
const (
	EventStatusChange = "STATUS_CHANGE"
	EventNote         = "NOTE"
	EventIntake       = "INTAKE"
	EventAssignment   = "ASSIGNMENT"
)

// TimelineEvent is an immutable audit record of a change to a vehicle.
// Rows are append-only: never updated, never deleted.
type TimelineEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	VehicleVIN  string    `gorm:"size:17;not null;index" json:"vin"`
	EventType   string    `gorm:"size:32;not null" json:"eventType"`
	Description string    `gorm:"type:text" json:"description"`
	Department  string    `gorm:"size:64" json:"department,omitempty"`
	UserID      *uint     `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"timestamp"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
