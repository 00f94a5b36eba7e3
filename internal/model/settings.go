package model

import "time"

// Settings is the process-wide configuration row. A single row is created
// lazily on first write; reads fall back to defaults while it is absent.
type Settings struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	AppName         string    `gorm:"size:256" json:"appName"`
	AppNameShort    string    `gorm:"size:64" json:"appNameShort"`
	LogoData        string    `gorm:"type:text" json:"logoData"`
	CountryCode     string    `gorm:"size:8" json:"countryCode"`
	AdminTheme      string    `gorm:"size:32" json:"adminTheme"`
	KioskTheme      string    `gorm:"size:32" json:"kioskTheme"`
	DefaultLanguage string    `gorm:"size:16" json:"defaultLanguage"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}
