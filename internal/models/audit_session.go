package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus tracks the lifecycle of an audit session.
type SessionStatus string

const (
	// SessionStatusActive means at least one person still awaits verification.
	SessionStatusActive SessionStatus = "active"
	// SessionStatusCompleted means every seeded person has been verified.
	// Informational only; re-audits can still reopen individual persons.
	SessionStatusCompleted SessionStatus = "completed"
)

// AuditSession groups a roster of people to be verified in one audit pass.
type AuditSession struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UUID        string        `json:"uuid" gorm:"uniqueIndex"` // opaque session token
	Creator     string        `json:"creator"`
	Status      SessionStatus `json:"status" gorm:"default:'active'"`
	PersonCount int           `json:"person_count"`

	People []AuditPerson `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *AuditSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	return
}
