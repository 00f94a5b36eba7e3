package model

import "time"

// Visit represents one check-in/check-out episode tied to a visitor.
// A null CheckOutTime means the visit is currently active; the Active flag
// is kept explicit alongside it.
type Visit struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	VisitorID    int64      `gorm:"not null;index" json:"visitorId"`
	CheckInTime  time.Time  `gorm:"not null" json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	Active       bool       `gorm:"not null;default:true;index" json:"active"`
	Purpose      string     `gorm:"size:512" json:"purpose"`
	PartnerID    *int64     `gorm:"index" json:"partnerId"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt"`

	// Associations
	Visitor *Visitor `gorm:"foreignKey:VisitorID" json:"visitor,omitempty"`
}
