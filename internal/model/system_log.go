package model

import "time"

// SystemLog actions written by the application.
const (
	ActionScheduledCheckout = "scheduled_checkout"
	ActionManualCheckout    = "manual_checkout"
	ActionEmptyBin          = "empty_bin"
)

// SystemLog is an append-only audit trail entry for automated or bulk
// actions. AdminID is nil for scheduler-initiated entries.
type SystemLog struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Action        string    `gorm:"size:64;not null;index" json:"action"`
	Details       string    `gorm:"type:text" json:"details"`
	AdminID       *int64    `gorm:"index" json:"adminId"`
	AffectedCount int64     `gorm:"not null;default:0" json:"affectedCount"`
	CreatedAt     time.Time `gorm:"not null;index" json:"createdAt"`
}
