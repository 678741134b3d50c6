package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationProvider holds one outbound delivery target (shoutrrr URL).
type NotificationProvider struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"` // discord, slack, gotify, telegram, generic
	URL     string `json:"url"`  // The shoutrrr URL
	Enabled bool   `json:"enabled"`

	// Notification Preferences
	NotifyImports bool `json:"notify_imports" gorm:"default:true"`
	NotifyAudits  bool `json:"notify_audits" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *NotificationProvider) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
