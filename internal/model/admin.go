package model

import "time"

// Admin represents a staff account for the dashboard.
type Admin struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	DisplayName  string    `gorm:"size:256" json:"displayName"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

// AdminSession is a server-side login session, referenced by the session
// cookie value.
type AdminSession struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	AdminID   int64     `gorm:"not null;index" json:"adminId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
