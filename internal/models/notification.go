package models

import "time"

// Notification delivery states.
const (
	NotifyPending = "pending"
	NotifySent    = "sent"
	NotifyFailed  = "failed"
)

// Notification records one outbound send attempt. Delivery status may be
// corrected after the fact by a separate status-update call; nothing couples
// that call to the send itself.
type Notification struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Channel   string     `gorm:"size:16;not null" json:"channel"`
	Recipient string     `gorm:"size:256;not null" json:"recipient"`
	Subject   string     `gorm:"size:256" json:"subject"`
	Body      string     `gorm:"type:text" json:"body"`
	Status    string     `gorm:"size:8;default:pending;index" json:"status"`
	Error     string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}
