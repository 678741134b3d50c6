package models

import (
	"time"
)

// AuditPerson is one roster entry tracked through verification within a session.
// The roster carries no durable external ID, so identity is the explicit
// (name, grade, advisor) triple, unique per session.
type AuditPerson struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID uint   `json:"session_id" gorm:"uniqueIndex:idx_person_identity"`
	Name      string `json:"name" gorm:"uniqueIndex:idx_person_identity"`
	Grade     string `json:"grade" gorm:"uniqueIndex:idx_person_identity"`
	Advisor   string `json:"advisor" gorm:"uniqueIndex:idx_person_identity"`

	Audited   bool       `json:"audited" gorm:"default:false;index"`
	AuditedAt *time.Time `json:"audited_at,omitempty"`
	Auditor   string     `json:"auditor,omitempty"`

	// Children accumulate across audit passes; rows are never rewritten.
	DeviceRecords []DeviceRecord `json:"device_records,omitempty" gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`
	Notes         []Note         `json:"notes,omitempty" gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
