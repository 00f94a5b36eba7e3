package model

import "time"

// Report severity levels.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Report statuses. Transitions move forward by convention
// (open -> under_review -> resolved); this is not enforced by the store.
const (
	ReportStatusOpen        = "open"
	ReportStatusUnderReview = "under_review"
	ReportStatusResolved    = "resolved"
)

// VisitorReport is an incident or behavior note attached to a visitor.
type VisitorReport struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	VisitorID       int64      `gorm:"not null;index" json:"visitorId"`
	Type            string     `gorm:"size:64;not null" json:"type"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	Severity        string     `gorm:"size:16;not null" json:"severity"`
	Status          string     `gorm:"size:16;not null;default:open" json:"status"`
	ResolutionNotes string     `gorm:"type:text" json:"resolutionNotes"`
	ResolvedAt      *time.Time `json:"resolvedAt"`
	CreatedAt       time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Visitor *Visitor `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
}
