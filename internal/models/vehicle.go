package models

import "time"

// Vehicle statuses. Any status may follow any other; the workflow package
// only enforces membership in this set.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusOnHold     = "ON_HOLD"
)

// Vehicle priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Vehicle is the core work item on the reconditioning board. The VIN is the
// primary key, upper-cased on write, and immutable after creation.
type Vehicle struct {
	VIN         string     `gorm:"primaryKey;size:17" json:"vin"`
	Make        string     `gorm:"size:64;not null" json:"make"`
	Model       string     `gorm:"size:64;not null" json:"model"`
	Year        int        `json:"year"`
	Mileage     int        `json:"mileage"`
	Color       string     `gorm:"size:32" json:"color"`
	Status      string     `gorm:"size:16;default:PENDING;index" json:"status"`
	Priority    string     `gorm:"size:8;default:MEDIUM;index" json:"priority"`
	Location    string     `gorm:"size:64" json:"location"`
	AssigneeID  *uint      `json:"assigneeId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Assignee *User           `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Timeline []TimelineEvent `gorm:"foreignKey:VehicleVIN;references:VIN" json:"timeline,omitempty"`
}

// ValidStatus reports whether s is a member of the status set.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// ValidPriority reports whether p is a member of the priority set.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
