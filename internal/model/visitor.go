package model

import "time"

// Visitor represents a person with a persistent identity record across visits.
// The numeric ID doubles as the badge number shown at the reception desk.
type Visitor struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:256;not null" json:"fullName"`
	YearOfBirth  int       `gorm:"not null" json:"yearOfBirth"`
	Sex          string    `gorm:"size:16" json:"sex"`
	Municipality string    `gorm:"size:128" json:"municipality"`
	Email        string    `gorm:"size:256;uniqueIndex:idx_visitors_email,where:email <> ''" json:"email"`
	PhoneNumber  string    `gorm:"size:64;not null;index" json:"phoneNumber"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	VisitCount   int       `gorm:"not null;default:0" json:"visitCount"`
	Deleted      bool      `gorm:"not null;default:false;index" json:"deleted"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`

	// Associations
	Visits []Visit `gorm:"foreignKey:VisitorID" json:"visits,omitempty"`
}
