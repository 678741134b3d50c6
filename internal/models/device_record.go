package models

import (
	"time"
)

// DeviceRecord is an immutable snapshot of one piece of equipment confirmed at
// verification time. Re-audits append a fresh generation of records; existing
// rows are never mutated, preserving the full audit trail.
type DeviceRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PersonID     uint      `json:"person_id" gorm:"index"`
	AssetID      string    `json:"asset_id"`
	AssetTag     string    `json:"asset_tag"`
	SerialNumber string    `json:"serial_number"`
	DeviceType   string    `json:"device_type"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
